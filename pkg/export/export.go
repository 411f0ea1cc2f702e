// Package export tek bir submission'ın formatlanmış verisini
// CSV/XLSX dosyalarına yazar (e-posta eklerinde kullanılır).
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Desteklenen ek formatları.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// MIMEType format için content type döndürür.
func MIMEType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Row dışa aktarılan tek satır: bileşen etiketi ve formatlanmış değer.
type Row struct {
	Label string
	Value string
}

// CSV satırları başlıklı bir CSV dosyasına yazar.
func CSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"Alan", "Değer"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := writer.Write([]string{row.Label, row.Value}); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSX satırları tek sayfalık bir Excel dosyasına yazar.
func XLSX(rows []Row) ([]byte, error) {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	if err := file.SetSheetRow(sheet, "A1", &[]string{"Alan", "Değer"}); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow(sheet, cell, &[]string{row.Label, row.Value}); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
