package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/varunrmantri23/nexacode/internal/adapters/watch"
)

var (
	watchOutput string
	watchOnce   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Compose index.html, style.css and script.js into a live preview file",
	Long: `Watches a directory holding index.html, style.css and script.js. Each
file that stays unchanged for the quiescence interval is folded into the
preview file, which is rewritten whenever the composed document changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", watch.DefaultOutput, "preview file, relative to <dir> unless absolute")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "compose once and exit")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	out := output(cmd)
	out.PrintHeader("NexaCode Watch")

	w := watch.New(dir, watch.Options{
		Output:     watchOutput,
		Quiescence: cfg.Preview.Quiescence,
		Logger:     logger,
		OnWrite: func(path string, version uint64) {
			out.PrintSuccess("preview v%d written", version)
			out.PrintFile(path)
		},
	})
	if err := w.Load(); err != nil {
		out.PrintError("%v", err)
		return err
	}
	if watchOnce {
		return nil
	}

	out.PrintStep("watching %s", dir)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.Run(ctx)
}
