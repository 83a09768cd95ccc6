package archive

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/LindsayBradford/go-dbf/godbf"
	"github.com/stretchr/testify/require"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/gestmag"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/sanitize"
)

func TestConvertDBF(t *testing.T) {
	tests := []struct {
		name      string
		fieldType byte
		raw       string
		want      any
	}{
		{name: "numeric", fieldType: 'N', raw: "12.50", want: 12.5},
		{name: "numeric negative", fieldType: 'N', raw: "-3", want: float64(-3)},
		{name: "float type", fieldType: 'F', raw: "0.125", want: 0.125},
		{name: "date", fieldType: 'D', raw: "20240311", want: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{name: "bad date", fieldType: 'D', raw: "11/03/2024", want: nil},
		{name: "empty date", fieldType: 'D', raw: "", want: nil},
		{name: "logical true", fieldType: 'L', raw: "T", want: true},
		{name: "logical yes", fieldType: 'L', raw: "y", want: true},
		{name: "logical false", fieldType: 'L', raw: "F", want: false},
		{name: "logical unset", fieldType: 'L', raw: "?", want: nil},
		{name: "character", fieldType: 'C', raw: "Vis inox", want: "Vis inox"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, convertDBF(tt.fieldType, tt.raw))
		})
	}
}

func TestConvertDBFMalformedNumeric(t *testing.T) {
	for _, raw := range []string{"", "n/a", "12,5"} {
		n, ok := convertDBF('N', raw).(float64)
		require.True(t, ok)
		require.True(t, math.IsNaN(n), "raw %q", raw)
	}
}

func TestOpenDBFRoundTrip(t *testing.T) {
	table := godbf.New("UTF8")
	require.NoError(t, table.AddTextField("CODE", 10))
	require.NoError(t, table.AddNumberField("PRIX", 10, 2))

	row, err := table.AddNewRecord()
	require.NoError(t, err)
	require.NoError(t, table.SetFieldValueByName(row, "CODE", "A-001"))
	require.NoError(t, table.SetFieldValueByName(row, "PRIX", "12.50"))

	row, err = table.AddNewRecord()
	require.NoError(t, err)
	require.NoError(t, table.SetFieldValueByName(row, "CODE", "A-002"))
	require.NoError(t, table.SetFieldValueByName(row, "PRIX", "oops"))

	path := filepath.Join(t.TempDir(), "article.dbf")
	require.NoError(t, godbf.SaveToFile(table, path))

	a, err := Open(path, "UTF8")
	require.NoError(t, err)
	defer a.Close()

	require.Equal(t, 2, a.Count())

	first, err := a.Next()
	require.NoError(t, err)
	require.Equal(t, gestmag.Record{
		{Name: "CODE", Value: "A-001"},
		{Name: "PRIX", Value: 12.5},
	}, first)

	// A malformed numeric cell surfaces as NaN here and leaves the
	// sanitizer as zero.
	second, err := a.Next()
	require.NoError(t, err)
	n, ok := second[1].Value.(float64)
	require.True(t, ok)
	require.True(t, math.IsNaN(n))
	require.Equal(t, gestmag.Record{
		{Name: "CODE", Value: "A-002"},
		{Name: "PRIX", Value: float64(0)},
	}, sanitize.Record(second))
}
