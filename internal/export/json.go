// Package export implements the import/export file format: a UTF-8 JSON
// document {version, exportedAt, tags, settings}, plus a markdown rendering
// of the collection for sharing.
package export

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lotas/tabclue/internal/types"
)

// FormatVersion is the current export payload version.
const FormatVersion = 1

// ErrInvalidPayload is returned when an import payload is structurally
// unusable: version missing, or tags absent / not an array. Any other
// structural defect surfaces the same way.
var ErrInvalidPayload = errors.New("invalid import payload")

// JSON renders an export payload as an indented JSON document.
func JSON(data types.ExportData) (string, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	return string(b) + "\n", nil
}

// ParsePayload validates and decodes an import payload. Validation checks
// only that version is present and tags is an array; everything else is
// taken as-is.
func ParsePayload(payload []byte) (types.ExportData, error) {
	var probe struct {
		Version int             `json:"version"`
		Tags    json.RawMessage `json:"tags"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return types.ExportData{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if probe.Version == 0 {
		return types.ExportData{}, fmt.Errorf("%w: missing version", ErrInvalidPayload)
	}
	if !isJSONArray(probe.Tags) {
		return types.ExportData{}, fmt.Errorf("%w: tags is not an array", ErrInvalidPayload)
	}

	var data types.ExportData
	if err := json.Unmarshal(payload, &data); err != nil {
		return types.ExportData{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if data.Tags == nil {
		data.Tags = []types.Tag{}
	}
	return data, nil
}

func isJSONArray(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
