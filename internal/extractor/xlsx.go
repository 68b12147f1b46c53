package extractor

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"rfpqa/internal/domain"
)

// extractXLSX renders each sheet in workbook order as a "Sheet: <name>"
// header followed by its rows, tab-separated, with a blank line between
// sheets.
func extractXLSX(path string) (string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: open workbook: %w", domain.ErrExtraction, err)
	}
	defer wb.Close()

	var sb strings.Builder
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("%w: sheet %s: %w", domain.ErrExtraction, sheet, err)
		}
		sb.WriteString("Sheet: ")
		sb.WriteString(sheet)
		sb.WriteString("\n")
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
