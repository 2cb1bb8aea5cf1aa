package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/varunrmantri23/nexacode"
	"github.com/varunrmantri23/nexacode/internal/adapters/fs"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Write a stored project as a standalone HTML document",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default <project-id>.html, - for stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	app, err := nexacode.New(cfg, nexacode.WithLogger(logger))
	if err != nil {
		return err
	}
	defer app.Stop()

	project, doc, err := app.Export(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("export %s: %w", args[0], err)
	}

	if exportOutput == "-" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), doc)
		return err
	}

	path := exportOutput
	if path == "" {
		path = project.ID + ".html"
	}
	if err := fs.NewOSFileSystem().WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	out := output(cmd)
	out.PrintSuccess("exported %q", project.Title)
	out.PrintFile(path)
	return nil
}
