package archive

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/gestmag"
)

// csvArchive covers sites that ship text exports instead of dBase files. The
// whole file is read at open time: the loader needs the row count before the
// first record, and the files are small enough that streaming buys nothing.
type csvArchive struct {
	headers []string
	numeric []bool
	rows    [][]string
	pos     int
}

func openCSV(path string) (*csvArchive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("archive: open csv %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return &csvArchive{}, nil
		}
		return nil, fmt.Errorf("archive: read csv headers %s: %w", path, err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("archive: read csv row %s: %w", path, err)
		}
		rows = append(rows, row)
	}

	return &csvArchive{
		headers: headers,
		numeric: numericColumns(headers, rows),
		rows:    rows,
	}, nil
}

// numericColumns marks a column numeric when at least one non-empty cell in
// it parses as a number. CSV carries no type information, so this stands in
// for the dBase field descriptor.
func numericColumns(headers []string, rows [][]string) []bool {
	numeric := make([]bool, len(headers))
	for j := range headers {
		for _, row := range rows {
			if j >= len(row) || row[j] == "" {
				continue
			}
			if _, err := strconv.ParseFloat(row[j], 64); err == nil {
				numeric[j] = true
				break
			}
		}
	}
	return numeric
}

func (a *csvArchive) Count() int { return len(a.rows) }

func (a *csvArchive) Next() (gestmag.Record, error) {
	if a.pos >= len(a.rows) {
		return nil, io.EOF
	}
	row := a.rows[a.pos]
	a.pos++

	rec := make(gestmag.Record, 0, len(a.headers))
	for j, name := range a.headers {
		if j >= len(row) {
			rec = append(rec, gestmag.Field{Name: name, Value: nil})
			continue
		}
		rec = append(rec, gestmag.Field{Name: name, Value: a.convert(j, row[j])})
	}
	return rec, nil
}

func (a *csvArchive) convert(col int, raw string) any {
	if !a.numeric[col] {
		return raw
	}
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

func (a *csvArchive) Reset() error {
	a.pos = 0
	return nil
}

func (a *csvArchive) Close() error { return nil }
