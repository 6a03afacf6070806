package extract

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Excel renders every sheet of an xlsx workbook as a header line followed by one line per row.
func Excel(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: xlsx: %v", ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	var out strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		writeSheet(&out, sheet, rows)
	}
	return out.String(), nil
}

// writeSheet writes rows as "Sheet: name" and "Header: ..." lines followed by "Row n: ..." lines.
func writeSheet(out *strings.Builder, sheet string, rows [][]string) {
	out.WriteString("Sheet: ")
	out.WriteString(sheet)
	out.WriteString("\nHeader: ")
	out.WriteString(strings.Join(rows[0], "\t"))
	out.WriteByte('\n')
	for i := 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}
		out.WriteString("Row ")
		out.WriteString(strconv.Itoa(i + 1))
		out.WriteString(": ")
		out.WriteString(strings.Join(rows[i], "\t"))
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
