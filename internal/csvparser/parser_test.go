package csvparser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/sales-report/internal/config"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func defaultSettings() config.CSVSettings {
	return config.CSVSettings{Delimiter: ",", Encoding: "UTF-8"}
}

func TestParse(t *testing.T) {
	path := writeFile(t, "sales.csv", []byte(
		"\ufeff Date ,Region,PRODUCT,units,unit_price\n"+
			"2024-01-05,East,Widget,10,5.00\n"+
			"\n"+
			",,,,\n"+
			"2024-02-10,East,Widget,5,5.00\n"))

	data, err := Parse(path, defaultSettings())
	require.NoError(t, err)

	assert.Equal(t, []string{"date", "region", "product", "units", "unit_price"}, data.Headers)
	require.Equal(t, 2, data.RowCount())
	assert.Equal(t, []string{"2024-01-05", "East", "Widget", "10", "5.00"}, data.Rows[0])
	assert.Equal(t, []string{"2024-02-10", "East", "Widget", "5", "5.00"}, data.Rows[1])
	assert.Equal(t, []int{2, 5}, data.LineNumbers)
}

func TestParseKeepsRaggedRows(t *testing.T) {
	path := writeFile(t, "ragged.csv", []byte(
		"date,region,product,units,unit_price\n"+
			"2024-01-05,East,Widget\n"+
			"2024-01-06,East,Widget,1,2.00,extra\n"))

	data, err := Parse(path, defaultSettings())
	require.NoError(t, err)
	require.Equal(t, 2, data.RowCount())
	assert.Len(t, data.Rows[0], 3)
	assert.Len(t, data.Rows[1], 6)
}

func TestParseDelimiters(t *testing.T) {
	tests := []struct {
		name      string
		delimiter string
		content   string
	}{
		{"semicolon", ";", "date;region;product;units;unit_price\n2024-01-05;East;Widget;10;5.00\n"},
		{"pipe", "|", "date|region|product|units|unit_price\n2024-01-05|East|Widget|10|5.00\n"},
		{"tab", "tab", "date\tregion\tproduct\tunits\tunit_price\n2024-01-05\tEast\tWidget\t10\t5.00\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "sales.csv", []byte(tt.content))
			data, err := Parse(path, config.CSVSettings{Delimiter: tt.delimiter, Encoding: "UTF-8"})
			require.NoError(t, err)
			assert.Len(t, data.Headers, 5)
			require.Equal(t, 1, data.RowCount())
			assert.Equal(t, "Widget", data.Rows[0][2])
		})
	}
}

func TestParseLatin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String(
		"date,region,product,units,unit_price\n2024-01-05,Zürich,Crème,1,2.50\n")
	require.NoError(t, err)

	path := writeFile(t, "latin1.csv", []byte(encoded))
	data, err := Parse(path, config.CSVSettings{Delimiter: ",", Encoding: "ISO-8859-1"})
	require.NoError(t, err)
	require.Equal(t, 1, data.RowCount())
	assert.Equal(t, "Zürich", data.Rows[0][1])
	assert.Equal(t, "Crème", data.Rows[0][2])
}

func TestParseErrors(t *testing.T) {
	empty := writeFile(t, "empty.csv", nil)
	_, err := Parse(empty, defaultSettings())
	assert.True(t, errors.Is(err, ErrEmptyFile))

	_, err = Parse(filepath.Join(t.TempDir(), "missing.csv"), defaultSettings())
	assert.Error(t, err)

	ok := writeFile(t, "ok.csv", []byte("a\n"))
	_, err = Parse(ok, config.CSVSettings{Delimiter: "#"})
	assert.ErrorContains(t, err, "unsupported delimiter")

	_, err = Parse(ok, config.CSVSettings{Encoding: "EBCDIC"})
	assert.ErrorContains(t, err, "unsupported encoding")
}

func TestParseHeaderOnly(t *testing.T) {
	path := writeFile(t, "header.csv", []byte("date,region,product,units,unit_price\n"))

	data, err := Parse(path, defaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 0, data.RowCount())
	assert.Len(t, data.Headers, 5)
}
