package extractor

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"rfpqa/internal/domain"
)

// extractPDF concatenates per-page text in page order, newline-separated.
func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %w", domain.ErrExtraction, err)
	}
	defer f.Close()

	var sb strings.Builder
	for num := 1; num <= r.NumPage(); num++ {
		page := r.Page(num)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: pdf page %d: %w", domain.ErrExtraction, num, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
