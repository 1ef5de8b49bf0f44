// Package fileid provides deterministic IDs for knowledge sources and the rows they contain.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const prefix = "src:"

// SourceID returns a stable ID for a source location: a local path or a URL.
// Local paths are cleaned first so equivalent spellings share an ID.
func SourceID(location string) string {
	normalized := location
	if !strings.Contains(location, "://") {
		normalized = filepath.Clean(location)
	}
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:12])
}

// RowID returns the entry ID for a spreadsheet row. row is 1-based, as shown
// in spreadsheet applications, so IDs can be traced back to the sheet.
func RowID(sheet string, row int) string {
	return fmt.Sprintf("%s!%d", sheet, row)
}

// ParseRowID splits an ID produced by RowID. It reports false for IDs it did not produce.
func ParseRowID(id string) (sheet string, row int, ok bool) {
	i := strings.LastIndexByte(id, '!')
	if i <= 0 {
		return "", 0, false
	}
	row, err := strconv.Atoi(id[i+1:])
	if err != nil || row <= 0 {
		return "", 0, false
	}
	return id[:i], row, true
}
