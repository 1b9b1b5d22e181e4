package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"schemabrowser/internal/models"
)

// decodeFieldValues reads a flat JSON object of column values. Numbers keep
// their integer form; nested objects and arrays are rejected.
func decodeFieldValues(body io.Reader) (models.FieldValues, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("request body must be a JSON object")
		}
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("request body must be a JSON object")
	}

	values := make(models.FieldValues, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case json.Number:
			if n, err := val.Int64(); err == nil {
				values[k] = n
			} else if f, err := val.Float64(); err == nil {
				values[k] = f
			} else {
				return nil, fmt.Errorf("field %q: invalid number %s", k, val)
			}
		case map[string]any, []any:
			return nil, fmt.Errorf("field %q: nested values are not supported", k)
		default:
			values[k] = val
		}
	}
	return values, nil
}
