// Definition documents come in two shapes and three encodings.
//
// Esoterica (esoterica-calendar-v1): native format produced by export.
// Carries the full unit graph and round-trips exactly. Identified by a
// top-level "format" key.
//
// Simple: a month/weekday list in the style of common fantasy calendar tools,
// identified by a top-level "months" list. Converted with BuildUnits.
//
// Encoding is JSON when the payload starts with "{", TOML when the hint
// says so, and YAML otherwise.

package calendar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ImportFormat identifies which document shape was detected.
type ImportFormat string

const (
	FormatEsoterica ImportFormat = "esoterica"
	FormatSimple    ImportFormat = "simple"
	FormatUnknown   ImportFormat = "unknown"
)

// Encoding is a document serialization.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingYAML Encoding = "yaml"
	EncodingTOML Encoding = "toml"
)

// ImportResult holds a parsed document ready to be stored.
type ImportResult struct {
	Format   ImportFormat `json:"format"`
	Encoding Encoding     `json:"encoding"`
	Document *Document    `json:"document"`
}

// DetectEncoding picks the encoding of data. The hint may be an encoding
// name, a file name, or a content type.
func DetectEncoding(data []byte, hint string) Encoding {
	h := strings.ToLower(strings.TrimSpace(hint))
	if ext := filepath.Ext(h); ext != "" {
		h = strings.TrimPrefix(ext, ".")
	}
	switch {
	case strings.Contains(h, "toml"):
		return EncodingTOML
	case strings.Contains(h, "yaml"), h == "yml":
		return EncodingYAML
	case strings.Contains(h, "json"):
		return EncodingJSON
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return EncodingJSON
	}
	return EncodingYAML
}

// DetectAndParse decodes a definition document and converts it to the
// native shape. Returns an error if the shape cannot be detected or parsed.
func DetectAndParse(data []byte, hint string) (*ImportResult, error) {
	enc := DetectEncoding(data, hint)

	var raw map[string]any
	if err := decode(data, enc, &raw); err != nil {
		return nil, fmt.Errorf("decoding %s document: %w", enc, err)
	}

	switch detectFormat(raw) {
	case FormatEsoterica:
		var doc Document
		if err := decode(data, enc, &doc); err != nil {
			return nil, fmt.Errorf("parsing esoterica document: %w", err)
		}
		if doc.Version > DocumentVersion {
			return nil, fmt.Errorf("unsupported document version %d", doc.Version)
		}
		return &ImportResult{Format: FormatEsoterica, Encoding: enc, Document: &doc}, nil

	case FormatSimple:
		var def SimpleDefinition
		if err := decode(data, enc, &def); err != nil {
			return nil, fmt.Errorf("parsing simple calendar: %w", err)
		}
		doc, err := BuildDocument(def)
		if err != nil {
			return nil, err
		}
		return &ImportResult{Format: FormatSimple, Encoding: enc, Document: doc}, nil

	default:
		return nil, fmt.Errorf("unrecognized calendar format: expected an %s document or a simple month list", DocumentFormat)
	}
}

// detectFormat inspects the top-level keys of a decoded document.
func detectFormat(raw map[string]any) ImportFormat {
	if f, ok := raw["format"].(string); ok && f == DocumentFormat {
		return FormatEsoterica
	}
	if _, ok := raw["months"].([]any); ok {
		return FormatSimple
	}
	// TOML decodes arrays of tables as []map[string]any.
	if _, ok := raw["months"].([]map[string]any); ok {
		return FormatSimple
	}
	return FormatUnknown
}

func decode(data []byte, enc Encoding, v any) error {
	switch enc {
	case EncodingJSON:
		return json.Unmarshal(data, v)
	case EncodingTOML:
		return toml.Unmarshal(data, v)
	default:
		return yaml.Unmarshal(data, v)
	}
}
