package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/esoterica/internal/esoteric"
	"github.com/keyxmakerx/esoterica/internal/plugins/calendar"
)

var (
	unitID     string
	stepAmount int64
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Move a timestamp by a number of unit instances",
	Example: `  esoterica step -c gregorian.yaml -t 0 --unit month --amount 1
  esoterica step -c gregorian.yaml -t 0 -u day -n -7`,
	Args: cobra.NoArgs,
	RunE: runStep,
}

var floorCmd = &cobra.Command{
	Use:   "floor",
	Short: "Truncate a timestamp to the start of a unit instance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoundary(cmd, esoteric.Date.Floor)
	},
}

var roundCmd = &cobra.Command{
	Use:   "round",
	Short: "Move a timestamp to the nearest unit boundary",
	Long: `Move a timestamp to the nearest unit boundary.

A timestamp exactly halfway between two boundaries rounds down.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoundary(cmd, esoteric.Date.Round)
	},
}

func init() {
	for _, c := range []*cobra.Command{stepCmd, floorCmd, roundCmd} {
		addTimestampFlag(c)
		c.Flags().StringVarP(&unitID, "unit", "u", "", "unit id")
		_ = c.MarkFlagRequired("unit")
		rootCmd.AddCommand(c)
	}
	stepCmd.Flags().Int64VarP(&stepAmount, "amount", "n", 1, "number of instances, negative to move back")
}

func runStep(cmd *cobra.Command, args []string) error {
	cal, err := loadCalendar()
	if err != nil {
		return err
	}
	next, err := esoteric.New(cal, timestamp).Step(unitID, stepAmount)
	if err != nil {
		return err
	}
	return printTimestamp(cmd, next.Timestamp())
}

func runBoundary(cmd *cobra.Command, op func(esoteric.Date, string) (esoteric.Date, error)) error {
	cal, err := loadCalendar()
	if err != nil {
		return err
	}
	d, err := op(esoteric.New(cal, timestamp), unitID)
	if err != nil {
		return err
	}
	return printTimestamp(cmd, d.Timestamp())
}

func printTimestamp(cmd *cobra.Command, ts int64) error {
	return printResult(cmd, calendar.TimestampResult{Timestamp: ts}, strconv.FormatInt(ts, 10))
}
