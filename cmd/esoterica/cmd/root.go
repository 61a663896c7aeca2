package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/esoterica/internal/apperror"
	"github.com/keyxmakerx/esoterica/internal/esoteric"
	"github.com/keyxmakerx/esoterica/internal/plugins/calendar"
)

var (
	calendarFile string
	timestamp    int64
	jsonOutput   bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "esoterica",
	Short: "Evaluate esoteric calendar definitions",
	Long: `esoterica works with calendars described as a graph of time units.

A calendar file is a native definition document (esoterica-calendar-v1) or
a simple month list, encoded as JSON, YAML or TOML. Timestamps are raw
integers counted in the calendar's smallest unit; the definition's
origin_time is applied automatically.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ErrorMessage returns the text to show for a failed command. Validation
// and lookup failures carry their own client-safe message.
func ErrorMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&calendarFile, "calendar", "c", "", "calendar definition file (json, yaml or toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// addTimestampFlag registers the raw timestamp flag on a command.
func addTimestampFlag(cmd *cobra.Command) {
	cmd.Flags().Int64VarP(&timestamp, "time", "t", 0, "raw timestamp")
}

// loadCalendar reads, normalizes and validates the --calendar file.
func loadCalendar() (*esoteric.Calendar, error) {
	if calendarFile == "" {
		return nil, errors.New("--calendar is required")
	}
	data, err := os.ReadFile(calendarFile)
	if err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}
	result, err := calendar.DetectAndParse(data, calendarFile)
	if err != nil {
		return nil, err
	}
	if err := result.Document.Normalize(); err != nil {
		return nil, err
	}

	slog.Debug("calendar loaded",
		slog.String("file", calendarFile),
		slog.String("format", string(result.Format)),
		slog.String("encoding", string(result.Encoding)),
		slog.Int("units", len(result.Document.Calendar.Units)),
	)
	return esoteric.NewCalendar(result.Document.World()), nil
}

// printResult writes v as indented JSON with --json, otherwise text.
func printResult(cmd *cobra.Command, v any, text string) error {
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
