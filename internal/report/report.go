// Package report renders a run summary for humans and exports it as CSV for
// whoever reconciles the migration afterwards.
package report

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/pterm/pterm"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/migrate"
)

// Row is one summary line in the CSV export.
type Row struct {
	Site     string `csv:"site"`
	Kind     string `csv:"record_type"`
	Source   int    `csv:"source_count"`
	Inserted int    `csv:"inserted_count"`
	Errors   int    `csv:"error_count"`
}

// Rows flattens a summary into export rows, one per processed pair.
func Rows(s *migrate.Summary) []Row {
	rows := make([]Row, 0, len(s.Outcomes))
	for _, o := range s.Outcomes {
		rows = append(rows, Row{
			Site:     o.Site,
			Kind:     o.Kind.String(),
			Source:   o.SourceCount,
			Inserted: o.Inserted,
			Errors:   len(o.Errors),
		})
	}
	return rows
}

// WriteCSV writes the summary rows to path.
func WriteCSV(s *migrate.Summary, path string) error {
	data, err := csvutil.Marshal(Rows(s))
	if err != nil {
		return fmt.Errorf("report: marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}

// Print renders the per-pair table and totals to the terminal. Source and
// inserted counts diverge when the destination rejected records; the table
// makes that visible pair by pair.
func Print(s *migrate.Summary) {
	if len(s.Outcomes) == 0 {
		pterm.Println("No pairs were processed.")
	} else {
		data := pterm.TableData{{"Site", "Record type", "Source", "Inserted", "Errors"}}
		for _, o := range s.Outcomes {
			data = append(data, []string{
				o.Site,
				o.Kind.String(),
				strconv.Itoa(o.SourceCount),
				strconv.Itoa(o.Inserted),
				strconv.Itoa(len(o.Errors)),
			})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	for _, skip := range s.Skips {
		pterm.Warning.Println(skip.Reason)
	}

	pterm.Printf("Total: %d of %d records migrated in %s\n",
		s.TotalInserted(), s.TotalSource(), s.Elapsed.Round(time.Millisecond))
}
