package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTextPlainText(t *testing.T) {
	text, err := ExtractText([]byte("plain resume body"), "resume.txt")
	assert.NoError(t, err)
	assert.Equal(t, "plain resume body", text)
}

func TestExtractTextUnsupportedExtension(t *testing.T) {
	_, err := ExtractText([]byte("data"), "resume.exe")
	assert.Error(t, err)
}

func TestExtractTextGarbagePDF(t *testing.T) {
	// Unreadable documents error out; the caller degrades to empty text.
	_, err := ExtractText([]byte("this is not a pdf"), "resume.pdf")
	assert.Error(t, err)
}

func TestExtractTextGarbageDocx(t *testing.T) {
	_, err := ExtractText([]byte("this is not a docx"), "resume.docx")
	assert.Error(t, err)
}

func TestDocxPlainText(t *testing.T) {
	xml := `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p><w:p><w:r><w:t xml:space="preserve">Go developer</w:t></w:r></w:p>`
	assert.Equal(t, "Jane Doe Go developer", docxPlainText(xml))
}

func TestDocxPlainTextNoRuns(t *testing.T) {
	assert.Equal(t, "", docxPlainText("<w:document></w:document>"))
}
