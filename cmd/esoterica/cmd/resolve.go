package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/esoterica/internal/esoteric"
)

var resolveFields []string

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Turn unit values back into a timestamp",
	Long: `Turn unit values back into a timestamp.

Each --field is unit=value, where value is the zero-based index printed by
parse. Units left out count as zero.`,
	Example: `  esoterica resolve -c gregorian.yaml --field year=2024 --field day=14`,
	Args:    cobra.NoArgs,
	RunE:    runResolve,
}

func init() {
	resolveCmd.Flags().StringArrayVarP(&resolveFields, "field", "f", nil, "unit=value (repeatable)")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cal, err := loadCalendar()
	if err != nil {
		return err
	}
	fields, err := parseFieldFlags(cal, resolveFields)
	if err != nil {
		return err
	}
	return printTimestamp(cmd, cal.Resolve(fields)-cal.OriginTime())
}

// parseFieldFlags converts unit=value pairs into resolver input, checking
// that every unit exists.
func parseFieldFlags(cal *esoteric.Calendar, pairs []string) (map[string]esoteric.FieldValue, error) {
	fields := make(map[string]esoteric.FieldValue, len(pairs))
	for _, pair := range pairs {
		id, raw, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("field %q: expected unit=value", pair)
		}
		value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("field %q: value must be an integer", pair)
		}
		u, ok := cal.Unit(id)
		if !ok {
			return nil, fmt.Errorf("field %q: %w", pair, esoteric.ErrUnknownUnit)
		}
		fields[id] = esoteric.FieldValue{Value: value, FormatShorthand: u.FormatShorthand}
	}
	return fields, nil
}
