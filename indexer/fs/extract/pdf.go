package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF concatenates the plain text of every page, separated by newlines.
// Pages that fail to decode are skipped.
func PDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	r, err := openPDF(data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		text := pageText(r, i)
		if text == "" {
			continue
		}
		out.WriteString(text)
		out.WriteByte('\n')
	}
	return out.String(), nil
}

func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: pdf: %v", ErrUnreadable, p)
		}
	}()
	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: pdf: %v", ErrUnreadable, err)
	}
	return r, nil
}

func pageText(r *pdf.Reader, i int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	page := r.Page(i)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return printable([]byte(text))
}
