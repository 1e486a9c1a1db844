package export

import (
	"github.com/goccy/go-json"
)

// encodeStructured writes the records as an indented JSON array of
// {name, functions, failureModes, matrix}. Lists stay arrays.
func encodeStructured(records []Record) ([]byte, error) {
	out := make([]Record, len(records))
	for i, rec := range records {
		if rec.Functions == nil {
			rec.Functions = []string{}
		}
		if rec.FailureModes == nil {
			rec.FailureModes = []string{}
		}
		if rec.Matrix == nil {
			rec.Matrix = map[string]bool{}
		}
		out[i] = rec
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
