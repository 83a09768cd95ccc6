package report_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/gestmag"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/loader"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/migrate"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/report"
)

func sampleSummary() *migrate.Summary {
	return &migrate.Summary{
		Outcomes: []loader.Outcome{
			{Site: "DUC", Kind: gestmag.KindArticle, SourceCount: 120, Inserted: 120},
			{Site: "DUC", Kind: gestmag.KindCustomer, SourceCount: 40, Inserted: 38, Errors: []string{"a", "b"}},
		},
		Skips: []migrate.Skip{
			{Site: "KONE", Reason: "site directory missing"},
		},
	}
}

func TestRows(t *testing.T) {
	rows := report.Rows(sampleSummary())

	require.Equal(t, []report.Row{
		{Site: "DUC", Kind: "article", Source: 120, Inserted: 120, Errors: 0},
		{Site: "DUC", Kind: "customer", Source: 40, Inserted: 38, Errors: 2},
	}, rows)
}

func TestRowsEmptySummary(t *testing.T) {
	require.Empty(t, report.Rows(&migrate.Summary{}))
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, report.WriteCSV(sampleSummary(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t,
		"site,record_type,source_count,inserted_count,error_count\n"+
			"DUC,article,120,120,0\n"+
			"DUC,customer,40,38,2\n",
		string(data))
}

func TestWriteCSVBadPath(t *testing.T) {
	err := report.WriteCSV(sampleSummary(), filepath.Join(t.TempDir(), "no", "dir", "summary.csv"))
	require.Error(t, err)
}
