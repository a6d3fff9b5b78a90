package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDOCX reads word/document.xml out of the docx archive and walks it
// with a streaming decoder: paragraph text outside tables first, in
// document order, then each table's rows as pipe-joined cells under a
// "Table M" marker.
func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive failed: %w", err)
	}

	var docXML io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("open document.xml failed: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("not a docx file: word/document.xml missing")
	}
	defer docXML.Close()

	paragraphs, tables, err := walkDocumentXML(docXML)
	if err != nil {
		return "", fmt.Errorf("parse document.xml failed: %w", err)
	}

	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	tableNum := 0
	for _, rows := range tables {
		if len(rows) == 0 {
			continue
		}
		tableNum++
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "Table %d\n", tableNum)
		for _, row := range rows {
			b.WriteString(strings.Join(row, " | "))
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// walkDocumentXML collects non-blank paragraphs outside tables and the cell
// text of each table. Rows whose cells are all empty are dropped.
func walkDocumentXML(r io.Reader) (paragraphs []string, tables [][][]string, err error) {
	decoder := xml.NewDecoder(r)

	var (
		tableDepth int
		inText     bool
		para       strings.Builder
		cell       strings.Builder
		row        []string
		rows       [][]string
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tr":
				if tableDepth == 1 {
					row = nil
				}
			case "tc":
				if tableDepth == 1 {
					cell.Reset()
				}
			case "p":
				if tableDepth == 0 {
					para.Reset()
				}
			case "t":
				inText = true
			}
		case xml.CharData:
			if !inText {
				continue
			}
			if tableDepth > 0 {
				cell.Write(t)
			} else {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if tableDepth == 0 {
					if s := strings.TrimSpace(para.String()); s != "" {
						paragraphs = append(paragraphs, s)
					}
					para.Reset()
				} else {
					// Paragraph breaks inside a cell become spaces.
					cell.WriteByte(' ')
				}
			case "tc":
				if tableDepth == 1 {
					if s := strings.TrimSpace(cell.String()); s != "" {
						row = append(row, s)
					}
					cell.Reset()
				}
			case "tr":
				if tableDepth == 1 && len(row) > 0 {
					rows = append(rows, row)
					row = nil
				}
			case "tbl":
				tableDepth--
				if tableDepth == 0 {
					if len(rows) > 0 {
						tables = append(tables, rows)
					}
					rows = nil
				}
			}
		}
	}
	return paragraphs, tables, nil
}
