package rows

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/frontand-tech/frontand/pkg/clients/coreloop"
)

// testModeKeywordLimit mirrors the backend's truncation in test mode.
const testModeKeywordLimit = 3

// Table is parsed tabular input: a header row plus data rows.
type Table struct {
	Headers []string
	Rows    [][]string
}

// RowCount is the number of data rows, which is also the unit count
// metered for execution billing.
func (t Table) RowCount() int {
	return len(t.Rows)
}

// ParseCSV reads CSV content into a Table. The first record is the header.
func ParseCSV(content []byte) (Table, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return Table{}, fmt.Errorf("csv content is empty")
	}
	if err != nil {
		return Table{}, fmt.Errorf("failed to read csv header: %w", err)
	}

	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("failed to read csv row: %w", err)
		}

		// Pad short rows so every row aligns with the header.
		for len(record) < len(headers) {
			record = append(record, "")
		}

		rows = append(rows, record[:len(headers)])
	}

	return Table{Headers: headers, Rows: rows}, nil
}

// FreestyleParams configures a freestyle adaptation.
type FreestyleParams struct {
	Prompt             string
	BatchSize          int
	EnableGoogleSearch bool
	TestMode           bool
}

// AdaptFreestyle turns a table into the backend's freestyle payload: one
// keyed entry per row, keys stable under insertion order.
func AdaptFreestyle(table Table, p FreestyleParams) (*coreloop.ProcessRequest, error) {
	if p.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	if table.RowCount() == 0 {
		return nil, fmt.Errorf("no data rows to process")
	}

	data := make(map[string][]any, table.RowCount())
	for i, row := range table.Rows {
		values := make([]any, len(row))
		for j, value := range row {
			values[j] = value
		}
		data[fmt.Sprintf("row_%d", i)] = values
	}

	return &coreloop.ProcessRequest{
		Mode:               coreloop.ModeFreestyle,
		Data:               data,
		Headers:            table.Headers,
		Prompt:             p.Prompt,
		BatchSize:          p.BatchSize,
		EnableGoogleSearch: p.EnableGoogleSearch,
		TestMode:           p.TestMode,
	}, nil
}

// KeywordKombatParams configures a keyword-kombat adaptation.
type KeywordKombatParams struct {
	CompanyURL         string
	KeywordColumn      string
	EnableGoogleSearch bool
	TestMode           bool
}

// AdaptKeywordKombat extracts the keyword column from a table and builds
// the backend's keyword-kombat payload. When KeywordColumn is empty the
// first column is used. Test mode truncates to the backend's limit.
func AdaptKeywordKombat(table Table, p KeywordKombatParams) (*coreloop.ProcessRequest, error) {
	if p.CompanyURL == "" {
		return nil, fmt.Errorf("company url is required")
	}

	if table.RowCount() == 0 {
		return nil, fmt.Errorf("no keywords to process")
	}

	column := 0
	if p.KeywordColumn != "" {
		column = -1
		for i, header := range table.Headers {
			if strings.EqualFold(header, p.KeywordColumn) {
				column = i
				break
			}
		}
		if column < 0 {
			return nil, fmt.Errorf("keyword column %q not found", p.KeywordColumn)
		}
	}

	var keywords []string
	for _, row := range table.Rows {
		keyword := strings.TrimSpace(row[column])
		if keyword != "" {
			keywords = append(keywords, keyword)
		}
	}

	if len(keywords) == 0 {
		return nil, fmt.Errorf("no keywords to process")
	}

	if p.TestMode && len(keywords) > testModeKeywordLimit {
		keywords = keywords[:testModeKeywordLimit]
	}

	return &coreloop.ProcessRequest{
		Mode:               coreloop.ModeKeywordKombat,
		Keywords:           keywords,
		CompanyURL:         p.CompanyURL,
		KeywordVariable:    "keyword",
		EnableGoogleSearch: p.EnableGoogleSearch,
		TestMode:           p.TestMode,
	}, nil
}
