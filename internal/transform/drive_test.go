package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/google-importer/internal/config"
)

func TestExportFormatFor(t *testing.T) {
	tests := []struct {
		mime      string
		format    config.DocumentFormat
		ext       string
		supported bool
	}{
		{DocumentMimeType, config.DocumentFormatOpenXML, ".docx", true},
		{SpreadsheetMimeType, config.DocumentFormatOpenXML, ".xlsx", true},
		{PresentationMimeType, config.DocumentFormatOpenXML, ".pptx", true},
		{DocumentMimeType, config.DocumentFormatOpenDocument, ".odt", true},
		{SpreadsheetMimeType, config.DocumentFormatOpenDocument, ".ods", true},
		{PresentationMimeType, config.DocumentFormatOpenDocument, ".odp", true},
		{DocumentMimeType, "unknown", ".docx", true},
		{"application/vnd.google-apps.form", config.DocumentFormatOpenXML, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.mime+"/"+string(tt.format), func(t *testing.T) {
			f, ok := ExportFormatFor(tt.mime, tt.format)
			assert.Equal(t, tt.supported, ok)
			assert.Equal(t, tt.ext, f.Extension)
		})
	}
}

func TestIsGoogleNative(t *testing.T) {
	assert.True(t, IsGoogleNative(DocumentMimeType))
	assert.True(t, IsGoogleNative(FolderMimeType))
	assert.False(t, IsGoogleNative("image/jpeg"))
	assert.False(t, IsGoogleNative("application/pdf"))
}

func TestDriveFileName(t *testing.T) {
	name, ok := DriveFileName("report.pdf", "application/pdf", config.DocumentFormatOpenXML)
	assert.True(t, ok)
	assert.Equal(t, "report.pdf", name)

	name, ok = DriveFileName("Budget 2024", SpreadsheetMimeType, config.DocumentFormatOpenDocument)
	assert.True(t, ok)
	assert.Equal(t, "Budget 2024.ods", name)

	name, ok = DriveFileName("a/b", DocumentMimeType, config.DocumentFormatOpenXML)
	assert.True(t, ok)
	assert.Equal(t, "a_b.docx", name)

	name, ok = DriveFileName(strings.Repeat("x", 300), DocumentMimeType, config.DocumentFormatOpenXML)
	assert.True(t, ok)
	assert.Equal(t, strings.Repeat("x", 195)+".docx", name)

	_, ok = DriveFileName("Survey", "application/vnd.google-apps.form", config.DocumentFormatOpenXML)
	assert.False(t, ok)
}
