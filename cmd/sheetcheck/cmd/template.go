package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/excelreader/internal/sheet"
)

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template <out.xlsx>",
		Short: "Write an empty workbook with the required header row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Create(path)
			if err != nil {
				return withCode(ExitError, err)
			}

			if err := sheet.WriteTemplate(f); err != nil {
				f.Close()
				return withCode(ExitError, err)
			}
			if err := f.Close(); err != nil {
				return withCode(ExitError, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}
