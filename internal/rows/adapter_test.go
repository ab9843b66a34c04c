package rows

import (
	"testing"

	"github.com/frontand-tech/frontand/pkg/clients/coreloop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name            string
		content         string
		expectError     bool
		expectedHeaders []string
		expectedRows    [][]string
	}{
		{
			name:            "simple table",
			content:         "name,url\nAcme,acme.com\nGlobex,globex.com\n",
			expectedHeaders: []string{"name", "url"},
			expectedRows:    [][]string{{"Acme", "acme.com"}, {"Globex", "globex.com"}},
		},
		{
			name:            "short rows are padded",
			content:         "a,b,c\n1,2\n",
			expectedHeaders: []string{"a", "b", "c"},
			expectedRows:    [][]string{{"1", "2", ""}},
		},
		{
			name:            "header whitespace is trimmed",
			content:         "name , url\nAcme,acme.com\n",
			expectedHeaders: []string{"name", "url"},
			expectedRows:    [][]string{{"Acme", "acme.com"}},
		},
		{
			name:            "header only",
			content:         "name,url\n",
			expectedHeaders: []string{"name", "url"},
			expectedRows:    nil,
		},
		{
			name:        "empty content",
			content:     "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseCSV([]byte(tt.content))

			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedHeaders, table.Headers)
			assert.Equal(t, tt.expectedRows, table.Rows)
			assert.Equal(t, len(tt.expectedRows), table.RowCount())
		})
	}
}

func TestAdaptFreestyle(t *testing.T) {
	table, err := ParseCSV([]byte("name,url\nAcme,acme.com\nGlobex,globex.com\n"))
	require.NoError(t, err)

	req, err := AdaptFreestyle(table, FreestyleParams{
		Prompt:    "Summarize each company",
		BatchSize: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, coreloop.ModeFreestyle, req.Mode)
	assert.Equal(t, []string{"name", "url"}, req.Headers)
	assert.Equal(t, "Summarize each company", req.Prompt)
	assert.Equal(t, 10, req.BatchSize)
	assert.Len(t, req.Data, 2)
	assert.Equal(t, []any{"Acme", "acme.com"}, req.Data["row_0"])
	assert.Equal(t, []any{"Globex", "globex.com"}, req.Data["row_1"])
}

func TestAdaptFreestyleValidation(t *testing.T) {
	table := Table{Headers: []string{"name"}, Rows: [][]string{{"Acme"}}}

	_, err := AdaptFreestyle(table, FreestyleParams{})
	assert.ErrorContains(t, err, "prompt is required")

	_, err = AdaptFreestyle(Table{Headers: []string{"name"}}, FreestyleParams{Prompt: "x"})
	assert.ErrorContains(t, err, "no data rows")
}

func TestAdaptKeywordKombat(t *testing.T) {
	table, err := ParseCSV([]byte("Keyword,volume\nai tools, 100\n ,50\nworkflow automation,80\n"))
	require.NoError(t, err)

	req, err := AdaptKeywordKombat(table, KeywordKombatParams{
		CompanyURL:    "https://frontand.tech",
		KeywordColumn: "keyword",
	})
	require.NoError(t, err)

	assert.Equal(t, coreloop.ModeKeywordKombat, req.Mode)
	assert.Equal(t, "https://frontand.tech", req.CompanyURL)
	assert.Equal(t, "keyword", req.KeywordVariable)
	// Blank keyword rows are dropped.
	assert.Equal(t, []string{"ai tools", "workflow automation"}, req.Keywords)
}

func TestAdaptKeywordKombatTestModeTruncates(t *testing.T) {
	table := Table{
		Headers: []string{"keyword"},
		Rows:    [][]string{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}},
	}

	req, err := AdaptKeywordKombat(table, KeywordKombatParams{
		CompanyURL: "https://frontand.tech",
		TestMode:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, req.Keywords)
	assert.True(t, req.TestMode)
}

func TestAdaptKeywordKombatValidation(t *testing.T) {
	table := Table{Headers: []string{"keyword"}, Rows: [][]string{{"a"}}}

	_, err := AdaptKeywordKombat(table, KeywordKombatParams{})
	assert.ErrorContains(t, err, "company url is required")

	_, err = AdaptKeywordKombat(table, KeywordKombatParams{
		CompanyURL:    "https://frontand.tech",
		KeywordColumn: "missing",
	})
	assert.ErrorContains(t, err, `keyword column "missing" not found`)

	_, err = AdaptKeywordKombat(Table{Headers: []string{"keyword"}, Rows: [][]string{{"  "}}}, KeywordKombatParams{
		CompanyURL: "https://frontand.tech",
	})
	assert.ErrorContains(t, err, "no keywords to process")
}
