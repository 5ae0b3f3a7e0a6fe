package Reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"CafePOS/Models"
)

// Table is the flat form every report is exported in.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

func (t *Table) Append(values ...interface{}) {
	t.Rows = append(t.Rows, values)
}

func formatCell(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', 2, 64)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case uint:
		return strconv.FormatUint(uint64(value), 10)
	case bool:
		return strconv.FormatBool(value)
	case time.Time:
		return value.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(value)
	}
}

func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = formatCell(v)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func columnName(i int) string {
	name, err := excelize.ColumnNumberToName(i + 1)
	if err != nil {
		return "A"
	}
	return name
}

// WriteXLSX renders the table into a single sheet workbook.
func (t *Table) WriteXLSX() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := t.sheetName()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	for i, header := range t.Headers {
		f.SetCellValue(sheetName, columnName(i)+"1", header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for rowIndex, row := range t.Rows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%s%d", columnName(colIndex), rowIndex+2)
			if ts, ok := value.(time.Time); ok {
				value = ts.Format("2006-01-02 15:04:05")
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range t.Headers {
		col := columnName(i)
		f.SetColWidth(sheetName, col, col, 18)
	}

	if f.GetSheetName(0) != sheetName {
		f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing Excel file to buffer: %v", err)
	}
	return &buf, nil
}

// Sheet names are capped at 31 characters and cannot hold a few symbols.
func (t *Table) sheetName() string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '?', '*', '[', ']', ':':
			return '-'
		}
		return r
	}, t.Name)
	if name == "" {
		name = "Report"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}

// Export renders the table in the requested format and returns the content
// type and file name to send it with.
func (t *Table) Export(format, baseName string) ([]byte, string, string, error) {
	switch strings.ToLower(format) {
	case "", "csv":
		var buf bytes.Buffer
		if err := t.WriteCSV(&buf); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), "text/csv", baseName + ".csv", nil
	case "xlsx", "excel":
		buf, err := t.WriteXLSX()
		if err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", baseName + ".xlsx", nil
	}
	return nil, "", "", Models.Invalidf("unsupported export format %q, use csv or xlsx", format)
}
