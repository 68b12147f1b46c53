package extractor

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"rfpqa/internal/domain"
)

// documentXML mirrors the parts of word/document.xml we read. encoding/xml
// matches on local names, so the w: namespace prefixes are irrelevant.
type documentXML struct {
	Body struct {
		Paragraphs []paragraphXML `xml:"p"`
		Tables     []tableXML     `xml:"tbl"`
	} `xml:"body"`
}

type paragraphXML struct {
	Runs []struct {
		Texts []string `xml:"t"`
	} `xml:"r"`
}

type tableXML struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []paragraphXML `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

// extractDOCX emits paragraph text in document order, then all table text
// after the paragraphs: cells space-joined, rows newline-joined.
func extractDOCX(path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: open docx: %w", domain.ErrExtraction, err)
	}
	defer reader.Close()

	var raw []byte
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open document.xml: %w", domain.ErrExtraction, err)
		}
		raw, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: read document.xml: %w", domain.ErrExtraction, err)
		}
		break
	}
	if raw == nil {
		return "", fmt.Errorf("%w: docx has no word/document.xml", domain.ErrExtraction)
	}

	var doc documentXML
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("%w: parse document.xml: %w", domain.ErrExtraction, err)
	}

	var sb strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(paragraphText(para))
	}
	for _, table := range doc.Body.Tables {
		for _, row := range table.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				parts := make([]string, 0, len(cell.Paragraphs))
				for _, para := range cell.Paragraphs {
					parts = append(parts, paragraphText(para))
				}
				cells = append(cells, strings.Join(parts, " "))
			}
			sb.WriteString("\n")
			sb.WriteString(strings.Join(cells, " "))
		}
	}
	return sb.String(), nil
}

func paragraphText(para paragraphXML) string {
	var sb strings.Builder
	for _, run := range para.Runs {
		for _, text := range run.Texts {
			sb.WriteString(text)
		}
	}
	return sb.String()
}
