package sanitize_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/gestmag"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/sanitize"
)

func TestRecord(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    gestmag.Record
		expected gestmag.Record
	}{
		{
			name:     "empty record",
			input:    gestmag.Record{},
			expected: gestmag.Record{},
		},
		{
			name: "nan becomes zero",
			input: gestmag.Record{
				{Name: "PRIX", Value: math.NaN()},
			},
			expected: gestmag.Record{
				{Name: "PRIX", Value: float64(0)},
			},
		},
		{
			name: "infinities become zero",
			input: gestmag.Record{
				{Name: "PRIX", Value: math.Inf(1)},
				{Name: "REMISE", Value: math.Inf(-1)},
			},
			expected: gestmag.Record{
				{Name: "PRIX", Value: float64(0)},
				{Name: "REMISE", Value: float64(0)},
			},
		},
		{
			name: "duplicate field names keep first occurrence",
			input: gestmag.Record{
				{Name: "CODE", Value: "A-001"},
				{Name: "PRIX", Value: 12.5},
				{Name: "CODE", Value: "A-002"},
			},
			expected: gestmag.Record{
				{Name: "CODE", Value: "A-001"},
				{Name: "PRIX", Value: 12.5},
			},
		},
		{
			name: "valid values pass through unchanged",
			input: gestmag.Record{
				{Name: "CODE", Value: "A-001"},
				{Name: "PRIX", Value: 12.5},
				{Name: "DATCRE", Value: date},
				{Name: "ACTIF", Value: true},
				{Name: "COMMENT", Value: ""},
				{Name: "DATMOD", Value: nil},
			},
			expected: gestmag.Record{
				{Name: "CODE", Value: "A-001"},
				{Name: "PRIX", Value: 12.5},
				{Name: "DATCRE", Value: date},
				{Name: "ACTIF", Value: true},
				{Name: "COMMENT", Value: ""},
				{Name: "DATMOD", Value: nil},
			},
		},
		{
			name: "duplicate with malformed later value",
			input: gestmag.Record{
				{Name: "PRIX", Value: 3.75},
				{Name: "PRIX", Value: math.NaN()},
			},
			expected: gestmag.Record{
				{Name: "PRIX", Value: 3.75},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitize.Record(tt.input)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestRecordNeverEmitsNaN(t *testing.T) {
	rec := gestmag.Record{
		{Name: "A", Value: math.NaN()},
		{Name: "B", Value: 1.0},
		{Name: "A", Value: 2.0},
		{Name: "C", Value: math.Inf(1)},
	}

	for _, f := range sanitize.Record(rec) {
		if n, ok := f.Value.(float64); ok {
			require.False(t, math.IsNaN(n), "field %s is NaN", f.Name)
			require.False(t, math.IsInf(n, 0), "field %s is Inf", f.Name)
		}
	}
}

func TestRecordIdempotent(t *testing.T) {
	rec := gestmag.Record{
		{Name: "CODE", Value: "X"},
		{Name: "PRIX", Value: math.NaN()},
		{Name: "CODE", Value: "Y"},
		{Name: "QTE", Value: 4.0},
	}

	once := sanitize.Record(rec)
	twice := sanitize.Record(once)
	require.Equal(t, once, twice)
}

func TestRecordDoesNotMutateInput(t *testing.T) {
	rec := gestmag.Record{
		{Name: "PRIX", Value: math.NaN()},
	}

	_ = sanitize.Record(rec)

	n, ok := rec[0].Value.(float64)
	require.True(t, ok)
	require.True(t, math.IsNaN(n))
}
