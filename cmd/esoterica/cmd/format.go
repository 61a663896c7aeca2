package cmd

import (
	"github.com/spf13/cobra"

	"github.com/keyxmakerx/esoterica/internal/esoteric"
	"github.com/keyxmakerx/esoterica/internal/plugins/calendar"
)

var formatCmd = &cobra.Command{
	Use:   "format TEMPLATE",
	Short: "Render a timestamp with a template",
	Long: `Render a timestamp with a template.

Each run of a unit's shorthand letter is replaced by that unit's value,
padded to the run length. Other characters are copied through.`,
	Example: `  esoterica format -c gregorian.yaml -t 0 "dd/MMMM/yyyy hh:ii"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runFormat,
}

func init() {
	addTimestampFlag(formatCmd)
	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	cal, err := loadCalendar()
	if err != nil {
		return err
	}
	text := esoteric.New(cal, timestamp).Format(args[0])
	return printResult(cmd,
		calendar.FormatResult{Timestamp: timestamp, Template: args[0], Text: text},
		text)
}
