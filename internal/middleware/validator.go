package middleware

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Accepted upload extensions per modality, matching the browser file pickers.
var allowedExtensions = map[string][]string{
	"mri": {".jpg", ".jpeg", ".png", ".dcm"},
	"eeg": {".csv", ".txt", ".edf"},
}

// ValidateUploadName checks the file extension for a modality field.
func ValidateUploadName(field, filename string) error {
	allowed, ok := allowedExtensions[field]
	if !ok {
		return fmt.Errorf("unknown upload field: %s", field)
	}
	if strings.ContainsAny(filename, "\x00\n\r") {
		return fmt.Errorf("invalid characters in %s file name", field)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s file type %q (allowed: %s)", field, ext, strings.Join(allowed, ", "))
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
