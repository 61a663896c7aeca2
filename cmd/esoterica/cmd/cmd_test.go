package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/keyxmakerx/esoterica/internal/esoteric"
	"github.com/keyxmakerx/esoterica/internal/plugins/calendar"
)

// A day is 2 hours of 1 minute of 10 seconds; months A and B last 2 and 3
// days, so a year is 100 seconds and month B of year 1 starts at 140.
const simpleCalendar = `
name: Tiny
hours_per_day: 2
minutes_per_hour: 1
seconds_per_minute: 10
months:
  - name: A
    days: 2
  - name: B
    days: 3
weekdays: [Sun, Mon]
`

// resetFlags restores every flag to its default so package-level state does
// not leak between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writeCalendar(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiny.yaml")
	if err := os.WriteFile(path, []byte(simpleCalendar), 0o600); err != nil {
		t.Fatalf("writing calendar: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestFormatCommand(t *testing.T) {
	cal := writeCalendar(t)

	out, err := run(t, "format", "-c", cal, "-t", "150", "yyyy/mm/dd hh:ii:ss ww")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "0001/B/01 01:00:00 Mon" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestTimestampCommands(t *testing.T) {
	cal := writeCalendar(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"step day", []string{"step", "-c", cal, "-t", "150", "-u", "day"}, "170"},
		{"step year back", []string{"step", "-c", cal, "-t", "150", "-u", "year", "-n", "-1"}, "50"},
		{"floor day", []string{"floor", "-c", cal, "-t", "155", "-u", "day"}, "140"},
		{"round day up", []string{"round", "-c", cal, "-t", "155", "-u", "day"}, "160"},
		{"round day tie", []string{"round", "-c", cal, "-t", "150", "-u", "day"}, "140"},
		{"resolve", []string{"resolve", "-c", cal,
			"-f", "year=1", "-f", "month-2=1", "-f", "day=0", "-f", "hour=1", "-f", "minute=0", "-f", "second=0"}, "150"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != tt.want {
				t.Errorf("expected %s, got %q", tt.want, out)
			}
		})
	}
}

func TestParseCommand_JSON(t *testing.T) {
	cal := writeCalendar(t)

	out, err := run(t, "parse", "-c", cal, "-t", "150", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var result calendar.ParseResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	values := make(map[string]esoteric.Field)
	for _, f := range result.Fields {
		values[f.UnitID] = f
	}
	if values["year"].Value != 1 {
		t.Errorf("expected year 1, got %d", values["year"].Value)
	}
	month, ok := values["month-2"]
	if !ok || month.Value != 1 || month.CustomLabel == nil || *month.CustomLabel != "B" {
		t.Errorf("unexpected month field %+v", month)
	}
}

func TestParentCommand(t *testing.T) {
	cal := writeCalendar(t)

	out, err := run(t, "parent", "-c", cal, "-t", "150", "-u", "day", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var result calendar.ActiveParentResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result.ParentUnitID != "month-2" || result.CycleStart != 140 {
		t.Errorf("unexpected parent %+v", result)
	}
}

func TestBuildCommand(t *testing.T) {
	cal := writeCalendar(t)

	out, err := run(t, "build", cal, "--output", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc calendar.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Format != calendar.DocumentFormat || doc.Calendar.Name != "Tiny" {
		t.Errorf("unexpected document header %+v", doc)
	}
	if len(doc.Calendar.Units) == 0 {
		t.Error("expected units in built document")
	}
}

func TestCommandErrors(t *testing.T) {
	cal := writeCalendar(t)

	if _, err := run(t, "parse"); err == nil || !strings.Contains(err.Error(), "--calendar") {
		t.Errorf("expected missing calendar error, got %v", err)
	}

	_, err := run(t, "step", "-c", cal, "-u", "moon")
	if !errors.Is(err, esoteric.ErrUnknownUnit) {
		t.Errorf("expected ErrUnknownUnit, got %v", err)
	}

	_, err = run(t, "resolve", "-c", cal, "-f", "year")
	if err == nil || !strings.Contains(ErrorMessage(err), "unit=value") {
		t.Errorf("expected field syntax error, got %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("name: Broken\nmonths:\n  - name: A\n    days: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err = run(t, "parse", "-c", bad)
	if err == nil || !strings.Contains(ErrorMessage(err), "days must be positive") {
		t.Errorf("expected validation message, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "esoterica v"+Version) {
		t.Errorf("unexpected version output %q", out)
	}
}
