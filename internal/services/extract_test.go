package services_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/MegaGrindStone/doc-web-ui/internal/services"
	"github.com/xuri/excelize/v2"
)

func TestExtractCSV(t *testing.T) {
	csv := "Item,2026 Cost\nCompute,1200\nStorage,340\n"

	table, err := services.ExtractCSV([]byte(csv))
	if err != nil {
		t.Fatalf("ExtractCSV() error = %v", err)
	}

	want := "| Item | 2026 Cost |\n| --- | --- |\n| Compute | 1200 |\n| Storage | 340 |"
	if table != want {
		t.Errorf("ExtractCSV() = %q, want %q", table, want)
	}
}

func TestExtractCSVNoData(t *testing.T) {
	table, err := services.ExtractCSV([]byte("   \n  "))
	if err != nil {
		t.Fatalf("ExtractCSV() error = %v", err)
	}
	if table != services.NoCSVData {
		t.Errorf("ExtractCSV() = %q, want sentinel %q", table, services.NoCSVData)
	}
}

func TestExtractXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Item", "2026 Cost"},
		{"Compute", 1200},
		{"Storage", 340},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	table, err := services.ExtractXLSX(buf.Bytes())
	if err != nil {
		t.Fatalf("ExtractXLSX() error = %v", err)
	}

	if !strings.HasPrefix(table, "| Item | 2026 Cost |\n| --- | --- |") {
		t.Errorf("ExtractXLSX() header = %q", table)
	}
	if !strings.Contains(table, "| Compute | 1200 |") {
		t.Errorf("ExtractXLSX() missing data row: %q", table)
	}
}

func TestExtractXLSXRejectsGarbage(t *testing.T) {
	if _, err := services.ExtractXLSX([]byte("not a spreadsheet")); err == nil {
		t.Error("ExtractXLSX() error = nil, want error")
	}
}
