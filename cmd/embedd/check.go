package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/embedd/internal/backend"
	"github.com/hyperengineering/embedd/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Print the resolved configuration and runtime availability",
	Long:  "Resolves configuration and reports whether the selected backend can run in this binary, without starting the server.",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "backend:\t%s\n", cfg.Backend.Kind)
	fmt.Fprintf(w, "model:\t%s\n", cfg.Backend.Model)
	fmt.Fprintf(w, "model_path:\t%s\n", cfg.Backend.ModelPath)
	fmt.Fprintf(w, "precision:\t%s\n", cfg.Backend.Precision)
	fmt.Fprintf(w, "max_length:\t%d\n", cfg.Limits.MaxLength)
	fmt.Fprintf(w, "max_items:\t%d\n", cfg.Limits.MaxItems)
	fmt.Fprintf(w, "pipeline_dimensions:\t%d\n", backend.PipelineDimensions)
	fmt.Fprintf(w, "llama_compiled:\t%t\n", backend.LlamaAvailable())
	if err := w.Flush(); err != nil {
		return err
	}

	if cfg.Backend.Kind == "llama" && !backend.LlamaAvailable() {
		return fmt.Errorf("llama backend selected but not compiled in (build with -tags llama)")
	}
	return nil
}
