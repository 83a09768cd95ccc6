// Package archive reads legacy Gestmag archive files and yields their rows
// as structured records, field by name. Binary dBase parsing is delegated to
// go-dbf; a CSV reader covers sites that only ship text exports.
package archive

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/gestmag"
)

// Archive is an open legacy archive. The row count is known up front, rows
// are read in file order, and the sequence can be restarted once from the
// beginning. Next returns io.EOF after the last row.
type Archive interface {
	Count() int
	Next() (gestmag.Record, error)
	Reset() error
	Close() error
}

// Open opens path as an archive. The format is chosen by extension: .dbf is
// the Gestmag export format, .csv covers text exports. encoding applies to
// dBase files only (code page of the legacy export, e.g. "UTF8").
func Open(path, encoding string) (Archive, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dbf":
		return openDBF(path, encoding)
	case ".csv":
		return openCSV(path)
	default:
		return nil, fmt.Errorf("archive: unsupported file type %q", filepath.Ext(path))
	}
}
