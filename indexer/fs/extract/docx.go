package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DOCX walks word/document.xml, emitting text runs with paragraph and row breaks.
func DOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", ErrUnreadable, err)
	}
	for _, f := range r.File {
		if !strings.EqualFold(f.Name, "word/document.xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: docx: %v", ErrUnreadable, err)
		}
		defer rc.Close()
		return docxText(rc), nil
	}
	return "", fmt.Errorf("%w: docx: missing word/document.xml", ErrUnreadable)
}

func docxText(r io.Reader) string {
	dec := xml.NewDecoder(r)
	var buf strings.Builder
	newline := true
	breakLine := func() {
		if !newline {
			buf.WriteByte('\n')
			newline = true
		}
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t", "instrText":
				var text string
				if err := dec.DecodeElement(&text, &t); err == nil && text != "" {
					buf.WriteString(text)
					newline = false
				}
			case "tab":
				buf.WriteByte('\t')
				newline = false
			case "br", "cr":
				buf.WriteByte('\n')
				newline = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "tr":
				breakLine()
			case "tc":
				if !newline {
					buf.WriteByte('\t')
				}
			}
		}
	}
	return buf.String()
}
