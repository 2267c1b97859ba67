package vision

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Unknown is what the model is told to answer for anything it cannot see.
const Unknown = "unknown"

// VehicleInfo is the structured answer for one image.
type VehicleInfo struct {
	Make           Text `json:"make"`
	Model          Text `json:"model"`
	Type           Text `json:"type"`
	Year           Text `json:"year"`
	Color          Text `json:"color"`
	Condition      Text `json:"condition"`
	EstimatedValue Text `json:"estimated_value"`
	Description    Text `json:"description"`
}

// Text is a string field. JSON strings decode as-is, null decodes to "", and
// any other value (numbers, booleans, nested objects) is kept as its compact
// JSON text.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return err
	}
	*t = Text(buf.String())
	return nil
}

// ParseVehicleInfo decodes a cleaned model answer. Anything that is not a JSON
// object is an error.
func ParseVehicleInfo(s string) (*VehicleInfo, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &probe); err != nil {
		return nil, err
	}
	if probe == nil {
		return nil, fmt.Errorf("vehicle info: expected object, got null")
	}
	var v VehicleInfo
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return &v, nil
}
