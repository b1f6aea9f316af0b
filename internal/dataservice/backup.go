package dataservice

import (
	"encoding/json"

	"github.com/smartlaw/crm-backend/pkg/models"
	"github.com/smartlaw/crm-backend/pkg/sanitize"
)

// ValidationError reports an import payload that is not a usable aggregate.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid data format: " + e.Reason
}

// ExportData serializes the full aggregate as indented, human-readable
// JSON. The output round-trips through ImportData.
func ExportData(data models.AppData) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// ExportDataRedacted is ExportData with emails and phone numbers masked in
// every free-text field, for backups that leave the firm.
func ExportDataRedacted(data models.AppData) ([]byte, error) {
	out := data

	out.Sponsors = make([]models.Sponsor, len(data.Sponsors))
	copy(out.Sponsors, data.Sponsors)
	for i := range out.Sponsors {
		out.Sponsors[i].Notes = sanitize.RedactPII(out.Sponsors[i].Notes)
	}

	out.Lawyers = make([]models.Lawyer, len(data.Lawyers))
	copy(out.Lawyers, data.Lawyers)
	for i := range out.Lawyers {
		out.Lawyers[i].Notes = sanitize.RedactPII(out.Lawyers[i].Notes)
		out.Lawyers[i].Phone = sanitize.RedactPII(out.Lawyers[i].Phone)
	}

	out.Cases = make([]models.Case, len(data.Cases))
	copy(out.Cases, data.Cases)
	for i := range out.Cases {
		out.Cases[i].Description = sanitize.RedactPII(out.Cases[i].Description)
	}

	return json.MarshalIndent(out, "", "  ")
}

// importShape mirrors the aggregate with raw slices so presence of the
// required collections can be checked before committing to the full decode.
type importShape struct {
	Sponsors json.RawMessage `json:"sponsors"`
	Lawyers  json.RawMessage `json:"lawyers"`
	Cases    json.RawMessage `json:"cases"`
	Reorders json.RawMessage `json:"reorders"`
}

// ImportData parses raw as a full replacement aggregate. The payload must
// be a JSON object whose sponsors, lawyers, cases and reorders fields are
// all arrays; anything else fails with a *ValidationError and no state is
// touched. Tasks are optional since they are ephemeral anyway.
func ImportData(raw []byte) (models.AppData, error) {
	var shape importShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return models.AppData{}, &ValidationError{Reason: "not a JSON object"}
	}

	for field, val := range map[string]json.RawMessage{
		"sponsors": shape.Sponsors,
		"lawyers":  shape.Lawyers,
		"cases":    shape.Cases,
		"reorders": shape.Reorders,
	} {
		if !isJSONArray(val) {
			return models.AppData{}, &ValidationError{Reason: field + " must be an array"}
		}
	}

	var data models.AppData
	if err := json.Unmarshal(raw, &data); err != nil {
		return models.AppData{}, &ValidationError{Reason: err.Error()}
	}
	data.Normalize()
	return data, nil
}

func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
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
