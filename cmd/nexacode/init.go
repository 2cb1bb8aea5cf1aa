package main

import (
	"github.com/spf13/cobra"

	"github.com/varunrmantri23/nexacode/internal/adapters/fs"
	"github.com/varunrmantri23/nexacode/internal/initcmd"
)

var initCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Create starter index.html, style.css and script.js for watch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := initcmd.Run(args[0], fs.NewOSFileSystem(), output(cmd))
		return err
	},
}
