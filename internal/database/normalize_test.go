package database

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemabrowser/internal/models"
)

func TestNormalizeRowShapesAgree(t *testing.T) {
	columns := []string{"id", "name", "role_id"}

	keyed, err := NormalizeRow(columns, map[string]any{"id": int32(5), "name": []byte("Alice"), "role_id": nil})
	require.NoError(t, err)

	positional, err := NormalizeRow(columns, []any{int64(5), "Alice", nil})
	require.NoError(t, err)

	want := models.Row{
		{Name: "id", Value: int64(5)},
		{Name: "name", Value: "Alice"},
		{Name: "role_id", Value: nil},
	}
	assert.Equal(t, want, keyed)
	assert.Equal(t, want, positional)
}

func TestNormalizeRowUppercaseKeys(t *testing.T) {
	row, err := NormalizeRow([]string{"table_name"}, map[string]any{"TABLE_NAME": "Worker"})
	require.NoError(t, err)

	v, ok := row.Get("table_name")
	assert.True(t, ok)
	assert.Equal(t, "Worker", v)
}

func TestNormalizeRowErrors(t *testing.T) {
	_, err := NormalizeRow([]string{"a", "b"}, []any{1})
	assert.Error(t, err)

	_, err = NormalizeRow([]string{"a"}, "not a row")
	assert.Error(t, err)
}

func TestNormalizeValue(t *testing.T) {
	id := uuid.MustParse("3f1c0e1a-8d3b-4c57-9a52-2f0c1d6e7b11")

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bytes", []byte("abc"), "abc"},
		{"int32", int32(7), int64(7)},
		{"uint16", uint16(7), int64(7)},
		{"float32", float32(1.5), float64(1.5)},
		{"true", true, int64(1)},
		{"false", false, int64(0)},
		{"date", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "2024-03-09"},
		{"timestamp", time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC), "2024-03-09T14:30:00Z"},
		{"timestamp micros", time.Date(2024, 1, 2, 3, 4, 5, 123456000, time.UTC), "2024-01-02T03:04:05.123456Z"},
		{"offset midnight", time.Date(2024, 1, 2, 0, 0, 0, 0, time.FixedZone("", 2*60*60)), "2024-01-02T00:00:00+02:00"},
		{"utc midnight with nanos", time.Date(2024, 1, 2, 0, 0, 0, 5, time.UTC), "2024-01-02T00:00:00.000000005Z"},
		{"uuid bytes", [16]byte(id), id.String()},
		{"uuid", id, id.String()},
		{"other", struct{ A int }{3}, "{3}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeValue(tt.in))
		})
	}
}
