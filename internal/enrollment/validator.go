package enrollment

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nurseryhub/nursery-api/internal/models"
)

// MaxDocumentSize is the largest accepted document (5 MiB)
const MaxDocumentSize int64 = 5 * 1024 * 1024

const (
	MsgNoFileSelected    = "no file selected"
	MsgFileTooLarge      = "file exceeds maximum size"
	MsgUnsupportedFormat = "unsupported format"
	MsgUnknownType       = "unknown document type"
)

var allowedExtensions = map[string]bool{
	"pdf":  true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// NamingHint is the error added when a file name carries none of the document type keywords
func NamingHint(documentType models.DocumentType) string {
	return fmt.Sprintf("file name should mention %s", strings.Join(documentType.Keywords(), " or "))
}

// ValidateDocument checks a candidate file against the policy of a document type.
// Rules run in order (size, extension, naming) and every violation is reported.
// The naming rule is blocking: IsValid is true only when no rule produced an error.
func ValidateDocument(file *models.DocumentFile, documentType models.DocumentType) models.ValidationResult {
	if !documentType.IsValid() {
		return invalid(MsgUnknownType)
	}
	if file == nil {
		return invalid(MsgNoFileSelected)
	}

	errs := []string{}

	if file.Size > MaxDocumentSize {
		errs = append(errs, MsgFileTooLarge)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.FileName), "."))
	if !allowedExtensions[ext] {
		errs = append(errs, MsgUnsupportedFormat)
	}

	if !matchesKeyword(file.FileName, documentType) {
		errs = append(errs, NamingHint(documentType))
	}

	return models.ValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

func matchesKeyword(fileName string, documentType models.DocumentType) bool {
	name := strings.ToLower(fileName)
	for _, keyword := range documentType.Keywords() {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

func invalid(msg string) models.ValidationResult {
	return models.ValidationResult{IsValid: false, Errors: []string{msg}}
}
