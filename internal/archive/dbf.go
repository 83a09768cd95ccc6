package archive

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/LindsayBradford/go-dbf/godbf"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/gestmag"
)

// dbfArchive wraps a go-dbf table. go-dbf loads the whole file, so Count is
// exact and Reset is a cursor rewind.
type dbfArchive struct {
	table *godbf.DbfTable
	pos   int
}

func openDBF(path, encoding string) (*dbfArchive, error) {
	table, err := godbf.NewFromFile(path, encoding)
	if err != nil {
		return nil, fmt.Errorf("archive: read dbf %s: %w", path, err)
	}
	return &dbfArchive{table: table}, nil
}

func (a *dbfArchive) Count() int { return a.table.NumberOfRecords() }

func (a *dbfArchive) Next() (gestmag.Record, error) {
	if a.pos >= a.table.NumberOfRecords() {
		return nil, io.EOF
	}
	fields := a.table.Fields()
	rec := make(gestmag.Record, 0, len(fields))
	for j, fd := range fields {
		raw := strings.TrimSpace(a.table.FieldValue(a.pos, j))
		rec = append(rec, gestmag.Field{
			Name:  fd.Name(),
			Value: convertDBF(byte(fd.FieldType()), raw),
		})
	}
	a.pos++
	return rec, nil
}

func (a *dbfArchive) Reset() error {
	a.pos = 0
	return nil
}

func (a *dbfArchive) Close() error { return nil }

// convertDBF maps a dBase field value to a scalar. Numeric cells that do not
// parse become NaN so that the sanitizer can normalize them to zero; the
// destination never sees the NaN.
func convertDBF(fieldType byte, raw string) any {
	switch fieldType {
	case 'N', 'F':
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return math.NaN()
		}
		return n
	case 'D':
		t, err := time.Parse("20060102", raw)
		if err != nil {
			return nil
		}
		return t
	case 'L':
		switch raw {
		case "T", "t", "Y", "y":
			return true
		case "F", "f", "N", "n":
			return false
		}
		return nil
	default:
		return raw
	}
}
