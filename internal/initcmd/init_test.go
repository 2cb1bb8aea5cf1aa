package initcmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/varunrmantri23/nexacode/internal/adapters/cli"
	"github.com/varunrmantri23/nexacode/internal/adapters/fs"
)

func TestRunCreatesStarter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")
	var buf bytes.Buffer

	created, err := Run(dir, fs.NewOSFileSystem(), cli.NewOutput(&buf, &buf))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("created %d files, want 3", len(created))
	}

	for _, name := range []string{"index.html", "style.css", "script.js"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("expected %s: %v", name, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}

	if !strings.Contains(buf.String(), "Created 3 files") {
		t.Errorf("summary missing from output: %q", buf.String())
	}
}

func TestRunRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "style.css"), []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := Run(dir, fs.NewOSFileSystem(), cli.NewOutput(&buf, &buf)); err == nil {
		t.Fatal("expected an error for an existing source file")
	}

	data, _ := os.ReadFile(filepath.Join(dir, "style.css"))
	if string(data) != "keep" {
		t.Errorf("style.css was overwritten: %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "index.html")); !os.IsNotExist(err) {
		t.Error("index.html should not be created")
	}
}
