package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Fragment spacing thresholds, relative to the current font size. A gap
// wider than wordGapRatio becomes a space; wider than cellGapRatio starts a
// new cell.
const (
	wordGapRatio = 0.3
	cellGapRatio = 3.0
)

// extractPDF runs the structured page/row pass first and falls back to a
// whole-document plain-text pass when it yields nothing.
func extractPDF(data []byte) (string, error) {
	if text, err := extractPDFStructured(data); err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	text, err := extractPDFPlain(data)
	if err != nil {
		return "", fmt.Errorf("pdf extraction failed: %w", err)
	}
	return text, nil
}

// extractPDFStructured walks pages in order. Each page gets a "Page N"
// marker; runs of rows with two or more cells are grouped under a
// "Table M on Page N" marker with cells joined by " | ". Failing pages are
// skipped.
func extractPDFStructured(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		rows, err := pageRows(reader, pageNum)
		if err != nil {
			continue
		}

		wroteHeader := false
		tableCount := 0
		inTable := false
		for _, row := range rows {
			cells := rowCells(row)
			if len(cells) == 0 {
				continue
			}
			if !wroteHeader {
				fmt.Fprintf(&b, "Page %d\n", pageNum)
				wroteHeader = true
			}
			if len(cells) >= 2 {
				if !inTable {
					tableCount++
					fmt.Fprintf(&b, "Table %d on Page %d\n", tableCount, pageNum)
					inTable = true
				}
				b.WriteString(strings.Join(cells, " | "))
			} else {
				inTable = false
				b.WriteString(cells[0])
			}
			b.WriteByte('\n')
		}
		if wroteHeader {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// pageRows fetches one page's rows. The pdf library panics on some
// malformed content streams; a panic counts as a failed page.
func pageRows(reader *pdf.Reader, pageNum int) (rows pdf.Rows, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d content panic: %v", pageNum, r)
		}
	}()
	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d is empty", pageNum)
	}
	return page.GetTextByRow()
}

// rowCells reassembles a row's text fragments into cells. The library
// reports fragments with horizontal positions; small gaps are spaces inside
// a cell, large gaps separate cells. Rows where every cell is blank come
// back empty.
func rowCells(row *pdf.Row) []string {
	var cells []string
	var cell strings.Builder
	lastEnd := 0.0
	havePrev := false

	flush := func() {
		if s := strings.TrimSpace(cell.String()); s != "" {
			cells = append(cells, s)
		}
		cell.Reset()
	}

	for _, frag := range row.Content {
		size := frag.FontSize
		if size <= 0 {
			size = 10
		}
		if havePrev {
			gap := frag.X - lastEnd
			if gap > size*cellGapRatio {
				flush()
			} else if gap > size*wordGapRatio {
				cell.WriteByte(' ')
			}
		}
		cell.WriteString(frag.S)
		lastEnd = frag.X + frag.W
		havePrev = true
	}
	flush()
	return cells
}

// extractPDFPlain concatenates page text in original order with no
// structure markers.
func extractPDFPlain(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf content panic: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
