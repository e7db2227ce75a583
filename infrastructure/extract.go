package infrastructure

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/sirupsen/logrus"
	"github.com/unidoc/unipdf/v3/extractor"
	pdf "github.com/unidoc/unipdf/v3/model"
)

// ExtractText pulls plain text out of an uploaded resume. Supported
// extensions: .pdf, .docx, .txt. Output may be empty; callers feed it
// forward rather than aborting the batch.
func ExtractText(data []byte, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return string(data), nil
	case ".pdf":
		return extractPDFText(data)
	case ".docx":
		return extractDocxText(data)
	default:
		return "", fmt.Errorf("unsupported file type: %s", filename)
	}
}

// extractPDFText extracts text page by page, skipping pages that fail.
func extractPDFText(data []byte) (string, error) {
	pdfReader, err := pdf.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to get page count: %w", err)
	}

	var textBuilder strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			logrus.WithField("page", i).WithError(err).Warn("failed to get PDF page")
			continue
		}

		ex, err := extractor.New(page)
		if err != nil {
			logrus.WithField("page", i).WithError(err).Warn("failed to create extractor")
			continue
		}

		pageText, err := ex.ExtractText()
		if err != nil {
			logrus.WithField("page", i).WithError(err).Warn("failed to extract page text")
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}

	return strings.TrimSpace(textBuilder.String()), nil
}

func extractDocxText(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX: %w", err)
	}
	defer r.Close()

	return docxPlainText(r.Editable().GetContent()), nil
}

// docxPlainText strips WordprocessingML markup, keeping the text runs
// (the contents of <w:t> elements).
func docxPlainText(content string) string {
	var textBuilder strings.Builder
	for {
		start := strings.Index(content, "<w:t")
		if start == -1 {
			break
		}
		rest := content[start:]
		open := strings.Index(rest, ">")
		if open == -1 {
			break
		}
		end := strings.Index(rest[open+1:], "</w:t>")
		if end == -1 {
			break
		}
		textBuilder.WriteString(rest[open+1 : open+1+end])
		textBuilder.WriteString(" ")
		content = rest[open+1+end:]
	}
	return strings.TrimSpace(textBuilder.String())
}
