package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fitresume/internal/extract"
	"fitresume/internal/fingerprint"
)

type extractOutput struct {
	Format   string `json:"format"`
	TextHash string `json:"text_hash"`
	Text     string `json:"text"`
}

// NewExtractCommand creates the extract command. It needs no database.
func NewExtractCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the plain text of a DOCX or PDF resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			res, err := extract.Text(cmd.Context(), data, filepath.Base(path))
			if err != nil {
				return err
			}
			out := extractOutput{
				Format:   res.Format,
				TextHash: fingerprint.Text(res.Text),
				Text:     res.Text,
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Text)
			return nil
		},
	}
}
