package calendar

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/keyxmakerx/esoterica/internal/esoteric"
)

// Native document identifiers.
const (
	DocumentFormat  = "esoterica-calendar-v1"
	DocumentVersion = 1
)

// Document is the top-level envelope for calendar export and import.
type Document struct {
	Format   string           `json:"format" yaml:"format" toml:"format"`
	Version  int              `json:"version" yaml:"version" toml:"version"`
	Calendar DocumentCalendar `json:"calendar" yaml:"calendar" toml:"calendar"`
}

// DocumentCalendar holds the calendar definition for export.
type DocumentCalendar struct {
	Name        string          `json:"name" yaml:"name" toml:"name"`
	Description *string         `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	OriginTime  int64           `json:"origin_time" yaml:"origin_time" toml:"origin_time"`
	Units       []esoteric.Unit `json:"units" yaml:"units" toml:"units"`
}

// BuildExport creates a Document from a calendar with its units loaded.
// Parent relations are left out; they are derived from children on import.
func BuildExport(cal *Calendar) *Document {
	units := make([]esoteric.Unit, len(cal.Units))
	for i, u := range cal.Units {
		u.Parents = nil
		units[i] = u
	}
	return &Document{
		Format:  DocumentFormat,
		Version: DocumentVersion,
		Calendar: DocumentCalendar{
			Name:        cal.Name,
			Description: cal.Description,
			OriginTime:  cal.OriginTime,
			Units:       units,
		},
	}
}

// Input converts a document into calendar creation input.
func (d *Document) Input() CreateCalendarInput {
	return CreateCalendarInput{
		Name:        d.Calendar.Name,
		Description: d.Calendar.Description,
		OriginTime:  d.Calendar.OriginTime,
		Units:       d.Calendar.Units,
	}
}

// Normalize sorts, sanitizes and derives parents for the document's units,
// then validates the graph. Documents evaluated without being stored must be
// normalized first.
func (d *Document) Normalize() error {
	d.Calendar.Units = normalizeUnits(d.Calendar.Units)
	return ValidateUnits(d.Calendar.Units)
}

// World returns the document's calendar in the shape the engine evaluates.
func (d *Document) World() esoteric.WorldCalendar {
	return esoteric.WorldCalendar{Units: d.Calendar.Units, OriginTime: d.Calendar.OriginTime}
}

// Encode serializes a document.
func Encode(doc *Document, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingJSON:
		return json.MarshalIndent(doc, "", "  ")
	case EncodingYAML:
		return yaml.Marshal(doc)
	case EncodingTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}
}

// ContentType returns the MIME type used when serving an encoding.
func (e Encoding) ContentType() string {
	switch e {
	case EncodingYAML:
		return "application/yaml"
	case EncodingTOML:
		return "application/toml"
	default:
		return "application/json"
	}
}
