package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/esoterica/internal/esoteric"
	"github.com/keyxmakerx/esoterica/internal/plugins/calendar"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Show every unit value at a timestamp",
	Example: `  esoterica parse -c gregorian.yaml -t 63072000
  esoterica parse -c gregorian.yaml -t -1 --json`,
	Args: cobra.NoArgs,
	RunE: runParse,
}

func init() {
	addTimestampFlag(parseCmd)
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cal, err := loadCalendar()
	if err != nil {
		return err
	}
	fields := esoteric.New(cal, timestamp).Parsed().Fields()

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UNIT\tVALUE\tLABEL")
	for _, f := range fields {
		label := ""
		if f.CustomLabel != nil {
			label = *f.CustomLabel
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", f.UnitID, f.Value, label)
	}
	w.Flush()

	return printResult(cmd,
		calendar.ParseResult{Timestamp: timestamp, Fields: fields},
		strings.TrimRight(b.String(), "\n"))
}
