package transform

import (
	"strings"

	"github.com/mrlokans/google-importer/internal/config"
)

const (
	FolderMimeType = "application/vnd.google-apps.folder"

	googleNativePrefix = "application/vnd.google-apps."

	DocumentMimeType     = googleNativePrefix + "document"
	SpreadsheetMimeType  = googleNativePrefix + "spreadsheet"
	PresentationMimeType = googleNativePrefix + "presentation"
)

// ExportFormat is the local representation of a Google-native document.
type ExportFormat struct {
	Extension string
	MimeType  string
}

var exportFormats = map[config.DocumentFormat]map[string]ExportFormat{
	config.DocumentFormatOpenXML: {
		DocumentMimeType:     {".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		SpreadsheetMimeType:  {".xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		PresentationMimeType: {".pptx", "application/vnd.openxmlformats-officedocument.presentationml.presentation"},
	},
	config.DocumentFormatOpenDocument: {
		DocumentMimeType:     {".odt", "application/vnd.oasis.opendocument.text"},
		SpreadsheetMimeType:  {".ods", "application/vnd.oasis.opendocument.spreadsheet"},
		PresentationMimeType: {".odp", "application/vnd.oasis.opendocument.presentation"},
	},
}

// IsGoogleNative reports whether mimeType is a Google Workspace type that
// has no downloadable content of its own.
func IsGoogleNative(mimeType string) bool {
	return strings.HasPrefix(mimeType, googleNativePrefix)
}

// ExportFormatFor returns the export target for a Google-native type in the
// given document family. Unknown families fall back to openxml. The second
// result is false for native types that cannot be exported (forms, maps,
// shortcuts).
func ExportFormatFor(mimeType string, format config.DocumentFormat) (ExportFormat, bool) {
	formats, ok := exportFormats[format]
	if !ok {
		formats = exportFormats[config.DocumentFormatOpenXML]
	}
	f, ok := formats[mimeType]
	return f, ok
}

// DriveFileName returns the local file name for a Drive item. Exported
// documents get the extension of their target format appended.
func DriveFileName(name, mimeType string, format config.DocumentFormat) (string, bool) {
	if !IsGoogleNative(mimeType) {
		return SanitizeFileName(name), true
	}
	f, ok := ExportFormatFor(mimeType, format)
	if !ok {
		return "", false
	}
	return WithExtension(name, f.Extension), true
}
