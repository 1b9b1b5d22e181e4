package database

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"schemabrowser/internal/models"
)

// NormalizeRow turns a driver row into a models.Row. raw is either a
// name-keyed map[string]any or a positional []any aligned with columns.
// Keyed lookups fall back to a case-insensitive match because some drivers
// upper-case result keys.
func NormalizeRow(columns []string, raw any) (models.Row, error) {
	row := make(models.Row, len(columns))

	switch src := raw.(type) {
	case map[string]any:
		var folded map[string]any
		for i, col := range columns {
			v, ok := src[col]
			if !ok {
				if folded == nil {
					folded = make(map[string]any, len(src))
					for k, val := range src {
						folded[strings.ToLower(k)] = val
					}
				}
				v = folded[strings.ToLower(col)]
			}
			row[i] = models.Field{Name: col, Value: NormalizeValue(v)}
		}
	case []any:
		if len(src) != len(columns) {
			return nil, fmt.Errorf("row has %d values for %d columns", len(src), len(columns))
		}
		for i, col := range columns {
			row[i] = models.Field{Name: col, Value: NormalizeValue(src[i])}
		}
	default:
		return nil, fmt.Errorf("unsupported row shape %T", raw)
	}

	return row, nil
}

// NormalizeValue maps a driver value onto nil, string, int64 or float64.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float64:
		return val
	case float32:
		return float64(val)
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		return formatTime(val)
	case [16]byte:
		return uuid.UUID(val).String()
	case uuid.UUID:
		return val.String()
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		if _, again := inner.(driver.Valuer); again {
			return fmt.Sprint(inner)
		}
		return NormalizeValue(inner)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// formatTime keeps fractional seconds and the zone offset. Only a UTC
// midnight, which is how date columns are scanned, collapses to a date.
func formatTime(t time.Time) string {
	if t.Location() == time.UTC && t.Equal(t.Truncate(24*time.Hour)) {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339Nano)
}
