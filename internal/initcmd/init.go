// Package initcmd scaffolds a directory for the watch command.
package initcmd

import (
	"embed"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"sort"

	"github.com/varunrmantri23/nexacode/internal/adapters/cli"
	"github.com/varunrmantri23/nexacode/internal/adapters/fs"
)

//go:embed starter
var starterFS embed.FS

// Run writes the starter index.html, style.css and script.js into dir. The
// directory may be missing but must not contain any of those files.
func Run(dir string, fsys fs.FileSystem, out *cli.Output) ([]string, error) {
	out.PrintHeader("NexaCode Init")

	entries, err := iofs.ReadDir(starterFS, "starter")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if fsys.FileExists(filepath.Join(dir, name)) {
			return nil, fmt.Errorf("%s already exists in %s", name, dir)
		}
	}

	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	created := make([]string, 0, len(names))
	for _, name := range names {
		content, err := starterFS.ReadFile("starter/" + name)
		if err != nil {
			return nil, err
		}
		target := filepath.Join(dir, name)
		if err := fsys.WriteFile(target, content, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", target, err)
		}
		out.PrintFile(target)
		created = append(created, target)
	}

	out.PrintSuccess("Created %d files", len(created))
	out.PrintStep("Next: nexacode watch %s", dir)
	return created, nil
}
