package extractors

import (
	"path/filepath"
	"strings"
)

// mimeByExtension maps file extensions to the MIME types the built-in
// extractors understand.
var mimeByExtension = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".rtf":  "application/rtf",
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tiff": "image/tiff",
}

// MIMEForPath guesses a document MIME type from its file extension.
// Returns the empty string for unrecognised extensions.
func MIMEForPath(path string) string {
	return mimeByExtension[strings.ToLower(filepath.Ext(path))]
}
