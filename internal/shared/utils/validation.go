package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxManifestSize = 256 * 1024 // 256KB - single app manifest
	MaxJSONSize     = 1 * 1024 * 1024
)

// String length limits
const (
	MaxIDLength          = 128
	MaxNameLength        = 256
	MaxDescriptionLength = 2048
	MaxHrefLength        = 2048
	MaxCategoryLength    = 64
	MaxTagLength         = 32
	MaxTagCount          = 20
)

// Regular expressions for validation
var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// CategoryPattern allows lowercase letters, numbers, hyphens
	CategoryPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// SizeValidator validates payload size limits
type SizeValidator struct {
	maxSize int
}

// NewSizeValidator creates a new validator with the specified max size
func NewSizeValidator(maxSize int) *SizeValidator {
	return &SizeValidator{maxSize: maxSize}
}

// ManifestValidator returns a validator for app manifest files
func ManifestValidator() *SizeValidator {
	return NewSizeValidator(MaxManifestSize)
}

// ValidateSize checks if the data size is within limits
func (v *SizeValidator) ValidateSize(data []byte) error {
	size := len(data)
	if size > v.maxSize {
		return fmt.Errorf("payload size %d bytes exceeds maximum %d bytes", size, v.maxSize)
	}
	return nil
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateName validates a name field
func ValidateName(name, fieldName string) error {
	return ValidateString(name, fieldName, 1, MaxNameLength, true)
}

// ValidateDescription validates a description field
func ValidateDescription(description, fieldName string, required bool) error {
	return ValidateString(description, fieldName, 0, MaxDescriptionLength, required)
}

// ValidateHref validates a navigation target. Only app-relative paths are allowed.
func ValidateHref(href string) error {
	if err := ValidateString(href, "href", 0, MaxHrefLength, false); err != nil {
		return err
	}
	if href != "" && (!strings.HasPrefix(href, "/") || strings.HasPrefix(href, "//")) {
		return fmt.Errorf("href must be an absolute path within the shell")
	}
	return nil
}

// ValidateCategory validates a category field
func ValidateCategory(category string, required bool) error {
	if err := ValidateString(category, "category", 0, MaxCategoryLength, required); err != nil {
		return err
	}

	if category != "" && !CategoryPattern.MatchString(category) {
		return fmt.Errorf("category must contain only lowercase letters, numbers, and hyphens")
	}

	return nil
}

// ValidateTags validates an array of tags
func ValidateTags(tags []string) error {
	if len(tags) > MaxTagCount {
		return fmt.Errorf("too many tags (maximum %d)", MaxTagCount)
	}

	for i, tag := range tags {
		if err := ValidateString(tag, fmt.Sprintf("tag[%d]", i), 1, MaxTagLength, false); err != nil {
			return err
		}
	}

	return nil
}
