// Package source loads knowledge entries from spreadsheets.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/kotae/internal/fileid"
	"github.com/hyperjump/kotae/internal/models"
)

// Source types accepted by New.
const (
	TypeXLSX = "xlsx"
	TypeCSV  = "csv"
)

// Default header names looked up case-insensitively in the first row.
const (
	DefaultQuestionColumn = "question"
	DefaultAnswerColumn   = "answer"
)

// ErrNoEntries is returned when a sheet was read but held no usable rows.
var ErrNoEntries = errors.New("source has no entries")

// Source loads the full set of knowledge entries.
type Source interface {
	Load(ctx context.Context) ([]models.KnowledgeEntry, error)
	// Name identifies the source in logs and status output.
	Name() string
	// Location is the path or URL the source reads from.
	Location() string
}

// Options configure how rows are turned into entries.
type Options struct {
	Type           string
	Path           string
	URL            string
	Sheet          string
	QuestionColumn string
	AnswerColumn   string
	Timeout        time.Duration
}

// New builds the Source described by opts. An empty type is inferred from
// the path extension or the presence of a URL.
func New(opts Options) (Source, error) {
	typ := strings.ToLower(opts.Type)
	if typ == "" {
		switch {
		case opts.URL != "":
			typ = TypeCSV
		case strings.HasSuffix(strings.ToLower(opts.Path), ".csv"):
			typ = TypeCSV
		default:
			typ = TypeXLSX
		}
	}

	switch typ {
	case TypeXLSX:
		if opts.Path == "" {
			return nil, fmt.Errorf("xlsx source requires a path")
		}
		return NewXLSXSource(opts.Path, opts), nil
	case TypeCSV:
		location := opts.URL
		if location == "" {
			location = opts.Path
		}
		if location == "" {
			return nil, fmt.Errorf("csv source requires a url or path")
		}
		return NewCSVSource(location, opts), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", opts.Type)
	}
}

// rowMapper turns sheet rows into entries using a detected header.
type rowMapper struct {
	questionCol int
	answerCol   int
	headers     []string
	dataStart   int
}

// detectColumns finds the question and answer columns in the first row.
// When the first row carries no matching header, columns A and B are used
// and every row is treated as data.
func detectColumns(rows [][]string, opts Options) rowMapper {
	qName := strings.ToLower(strings.TrimSpace(opts.QuestionColumn))
	if qName == "" {
		qName = DefaultQuestionColumn
	}
	aName := strings.ToLower(strings.TrimSpace(opts.AnswerColumn))
	if aName == "" {
		aName = DefaultAnswerColumn
	}

	m := rowMapper{questionCol: 0, answerCol: 1}
	if len(rows) == 0 {
		return m
	}

	header := rows[0]
	q, a := -1, -1
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case qName:
			if q < 0 {
				q = i
			}
		case aName:
			if a < 0 {
				a = i
			}
		}
	}
	if q < 0 || a < 0 {
		return m
	}

	m.questionCol = q
	m.answerCol = a
	m.headers = header
	m.dataStart = 1
	return m
}

// entries converts rows to entries. Rows with a blank question are skipped.
// IDs carry the 1-based sheet row so failures can be traced to the sheet.
func (m rowMapper) entries(sheet string, rows [][]string) []models.KnowledgeEntry {
	out := make([]models.KnowledgeEntry, 0, len(rows))
	for i := m.dataStart; i < len(rows); i++ {
		row := rows[i]
		question := strings.TrimSpace(cell(row, m.questionCol))
		if question == "" {
			continue
		}
		entry := models.KnowledgeEntry{
			ID:       fileid.RowID(sheet, i+1),
			Question: question,
			Answer:   strings.TrimSpace(cell(row, m.answerCol)),
		}
		for c, v := range row {
			if c == m.questionCol || c == m.answerCol || c >= len(m.headers) {
				continue
			}
			key := strings.TrimSpace(m.headers[c])
			v = strings.TrimSpace(v)
			if key == "" || v == "" {
				continue
			}
			if entry.Metadata == nil {
				entry.Metadata = make(map[string]interface{})
			}
			entry.Metadata[key] = v
		}
		out = append(out, entry)
	}
	return out
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
