package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/esoterica/internal/plugins/calendar"
)

var buildOutput string

var buildCmd = &cobra.Command{
	Use:   "build FILE",
	Short: "Convert a simple month list into a native definition",
	Long: `Convert a simple month list into a native definition.

FILE describes months, weekdays, the clock and a leap rule. The resulting
esoterica-calendar-v1 document is written to stdout in the encoding chosen
with --output.`,
	Example: `  esoterica build harptos.yaml --output json > harptos.json`,
	Args:    cobra.ExactArgs(1),
	RunE:    runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", string(calendar.EncodingYAML), "output encoding: json, yaml or toml")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading definition: %w", err)
	}
	result, err := calendar.DetectAndParse(data, args[0])
	if err != nil {
		return err
	}
	if err := result.Document.Normalize(); err != nil {
		return err
	}

	out, err := calendar.Encode(result.Document, calendar.Encoding(buildOutput))
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
