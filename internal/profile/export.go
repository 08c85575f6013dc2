package profile

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"
)

// csvHeader is the fixed column order of the tabular export.
var csvHeader = []string{"ID", "Name", "Department", "Access", "Face", "Iris", "Ears", "Eyes", "EnrolledAt"}

// ExportJSON serializes profiles with full fidelity. Parsing the output back
// yields a collection equal to the input, field for field.
func ExportJSON(profiles []Profile) ([]byte, error) {
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize profiles: %w", err)
	}
	return data, nil
}

// ExportCSV serializes profiles as one row per profile. encoding/csv quotes
// fields containing the delimiter, so descriptor text with commas survives.
// Timestamps are rendered as ISO-8601 UTC. Photos are not exported.
func ExportCSV(profiles []Profile) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range profiles {
		p := &profiles[i]
		row := []string{
			p.ID,
			p.FullName,
			p.Department,
			string(p.AccessLevel),
			p.FaceDescription,
			p.IrisPattern,
			p.EarStructure,
			p.EyeSpacing,
			p.EnrolledTime().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
