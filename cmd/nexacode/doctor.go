package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/varunrmantri23/nexacode/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and database",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := output(cmd)
	out.PrintHeader("NexaCode Doctor")

	failed := false

	if err := cfg.Validate(); err != nil {
		out.PrintError("%v", err)
		failed = true
	} else {
		out.PrintSuccess("configuration ok (addr %s)", cfg.Addr)
	}

	switch {
	case cfg.Dev && cfg.Auth.Secret == "":
		out.PrintWarning("dev mode without auth.secret: every request acts as the dev user")
	case cfg.Auth.Secret != "" && len(cfg.Auth.Secret) < 32:
		out.PrintWarning("auth.secret is shorter than 32 bytes")
	}

	st, err := store.Open(cfg.DBPath, store.WithMkdirAll())
	if err != nil {
		out.PrintError("database: %v", err)
		failed = true
	} else {
		out.PrintSuccess("database ready")
		out.PrintFile(cfg.DBPath)
		_ = st.Close()
	}

	if failed {
		return errors.New("doctor found problems")
	}
	return nil
}
