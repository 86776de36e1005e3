package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/embedd/internal/backend"
	"github.com/hyperengineering/embedd/internal/config"
	"github.com/hyperengineering/embedd/internal/validation"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed texts from stdin and write vectors to stdout",
	Long: "Reads a JSON payload (object, string, or array) or line-delimited text " +
		"from stdin, runs it through the same validator and backend as the server, " +
		"and writes the vector list as JSON.",
	RunE: runEmbedStdin,
}

func runEmbedStdin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	body := coerceInput(strings.TrimSpace(string(raw)))
	if body == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "[]")
		return nil
	}

	texts, err := validation.ParseTexts(body, cfg.Limits.MaxItems)
	if err != nil {
		return err
	}
	maxLength := validation.ParseMaxLength(body, cfg.Limits.MaxLength)

	be, err := backend.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if c, ok := be.(io.Closer); ok {
			_ = c.Close()
		}
	}()

	vectors, err := be.Embed(cmd.Context(), texts, maxLength)
	if err != nil {
		return err
	}

	return json.NewEncoder(cmd.OutOrStdout()).Encode(vectors)
}

// coerceInput turns raw stdin into a request object: a JSON object passes
// through, a JSON string or array is wrapped under "texts", anything that is
// not JSON is treated as one text per non-empty line. Returns nil when there
// is nothing to embed.
func coerceInput(raw string) map[string]any {
	if raw == "" {
		return nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		var lines []any
		for _, line := range strings.Split(raw, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		return map[string]any{"texts": lines}
	}

	switch v := parsed.(type) {
	case map[string]any:
		return v
	case string:
		return map[string]any{"texts": []any{v}}
	case []any:
		return map[string]any{"texts": v}
	default:
		return nil
	}
}
