package discover

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"rsc.io/pdf"
)

var pdfDeadlineRegex = regexp.MustCompile(`(?i)(deadline|submissions?\s+(close|due)|cfp\s+closes?)[:\s]+([A-Za-z]+\s+\d{1,2}(st|nd|rd|th)?,?\s+\d{4}|\d{4}-\d{2}-\d{2}|\d{1,2}\s+[A-Za-z]+\s+\d{4})`)

// ExtractPDFDeadline pulls a CFP deadline out of a speaker-prospectus PDF.
// Some events only publish their call for speakers this way.
func ExtractPDFDeadline(body []byte) (time.Time, error) {
	text, err := extractPDFText(body)
	if err != nil {
		return time.Time{}, err
	}

	m := pdfDeadlineRegex.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, fmt.Errorf("no deadline found in PDF text")
	}
	return parseEventDate(m[3])
}

// extractPDFText pulls plain text from a PDF. The pdf package panics on
// malformed files, so recover and report an error instead.
func extractPDFText(body []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		for _, t := range page.Content().Text {
			sb.WriteString(t.S)
			sb.WriteByte(' ')
		}
	}
	return normalizeSpace(sb.String()), nil
}

// IsPDF reports whether a fetched document looks like a PDF.
func IsPDF(doc *FetchedDocument) bool {
	if strings.Contains(strings.ToLower(doc.ContentType), "application/pdf") {
		return true
	}
	return bytes.HasPrefix(doc.Body, []byte("%PDF"))
}
