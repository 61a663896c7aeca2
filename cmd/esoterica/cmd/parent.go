package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/esoterica/internal/esoteric"
	"github.com/keyxmakerx/esoterica/internal/plugins/calendar"
)

var parentUnitID string

var parentCmd = &cobra.Command{
	Use:   "parent",
	Short: "Show which parent instance contains a unit at a timestamp",
	Args:  cobra.NoArgs,
	RunE:  runParent,
}

func init() {
	addTimestampFlag(parentCmd)
	parentCmd.Flags().StringVarP(&parentUnitID, "unit", "u", "", "unit id")
	_ = parentCmd.MarkFlagRequired("unit")
	rootCmd.AddCommand(parentCmd)
}

func runParent(cmd *cobra.Command, args []string) error {
	cal, err := loadCalendar()
	if err != nil {
		return err
	}
	ap, ok, err := esoteric.New(cal, timestamp).ActiveParent(parentUnitID)
	if err != nil {
		return err
	}

	result := calendar.ActiveParentResult{UnitID: parentUnitID}
	text := fmt.Sprintf("%s is a root unit", parentUnitID)
	if ok {
		result.ParentUnitID = ap.Parent.ID
		result.CycleStart = ap.CycleStart
		text = fmt.Sprintf("%s\t%d", ap.Parent.ID, ap.CycleStart)
	}
	return printResult(cmd, result, text)
}
