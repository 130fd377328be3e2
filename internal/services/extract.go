package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sentinel strings returned when an uploaded file contains no rows. The turn core treats these
// like any other table text; the client decides how to present them.
const (
	NoExcelData = "(No data found in Excel sheet)"
	NoCSVData   = "(No data found in CSV)"
)

// ExtractXLSX reads the first sheet of a spreadsheet and returns its rows as a Markdown table.
func ExtractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("error opening spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return NoExcelData, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("error reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return NoExcelData, nil
	}

	return markdownTable(rows), nil
}

// ExtractCSV parses CSV bytes and returns the records as a Markdown table.
func ExtractCSV(data []byte) (string, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(string(data))))
	// Uploaded files are frequently ragged; render whatever is there.
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("error parsing csv: %w", err)
	}
	if len(rows) == 0 {
		return NoCSVData, nil
	}

	return markdownTable(rows), nil
}

func markdownTable(rows [][]string) string {
	header := rows[0]
	body := rows[1:]

	var sb strings.Builder
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")

	separators := make([]string, len(header))
	for i := range separators {
		separators[i] = "---"
	}
	sb.WriteString("| " + strings.Join(separators, " | ") + " |")

	for _, row := range body {
		sb.WriteString("\n| " + strings.Join(row, " | ") + " |")
	}

	return sb.String()
}
