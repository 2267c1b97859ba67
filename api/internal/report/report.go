package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"carinfo/api/internal/vision"
)

// Record is the outcome for one image. Data is nil when the call failed or
// the answer was not a JSON object; Error is set only for failed calls.
type Record struct {
	Filename string              `json:"filename"`
	Data     *vision.VehicleInfo `json:"data"`
	Error    string              `json:"error,omitempty"`
}

// Summary counts records by outcome. Succeeded means Data != nil.
type Summary struct {
	Total     int
	Succeeded int
	Failed    []string
}

func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.Data != nil {
			s.Succeeded++
		} else {
			s.Failed = append(s.Failed, r.Filename)
		}
	}
	return s
}

// Marshal renders records as a two-space indented JSON array. A nil slice
// becomes [].
func Marshal(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.MarshalIndent(records, "", "  ")
}

// Write stores the report at path. The file is written next to its final
// location and renamed, so a failed run never leaves a half-written report.
func Write(path string, records []Record) error {
	b, err := Marshal(records)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
