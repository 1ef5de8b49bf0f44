package source

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/kotae/internal/models"
)

// XLSXSource reads entries from one sheet of a local workbook.
type XLSXSource struct {
	path string
	opts Options
}

// NewXLSXSource creates a source for the workbook at path.
// An empty opts.Sheet selects the first sheet.
func NewXLSXSource(path string, opts Options) *XLSXSource {
	return &XLSXSource{path: path, opts: opts}
}

// Name returns the workbook file name and sheet.
func (s *XLSXSource) Name() string {
	if s.opts.Sheet != "" {
		return filepath.Base(s.path) + "#" + s.opts.Sheet
	}
	return filepath.Base(s.path)
}

// Location returns the workbook path.
func (s *XLSXSource) Location() string {
	return s.path
}

// Load reads the sheet and returns one entry per row with a question.
func (s *XLSXSource) Load(ctx context.Context) ([]models.KnowledgeEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := s.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s: %w", s.path, ErrNoEntries)
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("workbook %s has no sheet %q", s.path, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
	}

	entries := detectColumns(rows, s.opts).entries(sheet, rows)
	if len(entries) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, ErrNoEntries)
	}
	return entries, nil
}
