package textfile

import (
	"errors"
	"path/filepath"
	"strings"
)

// File name errors.
var (
	ErrFileNameTooShort = errors.New("file name too short")
	ErrFileExtension    = errors.New("invalid file extension")
	ErrFileName         = errors.New("invalid file name")
)

// Extensions the console accepts.
const (
	ExtText = ".txt"
	ExtXLSX = ".xlsx"
)

// forbiddenChars are the characters Windows rejects in file names, plus '.'.
const forbiddenChars = `/\?%*:|"<>.`

// ValidateFileName checks that the base name of path has one of the allowed
// extensions and a non-empty stem free of forbidden characters. Directory
// components are not checked. With no allowed extensions, ExtText is
// assumed.
func ValidateFileName(path string, allowedExt ...string) error {
	if len(allowedExt) == 0 {
		allowedExt = []string{ExtText}
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	if stem == "" || base == "." || base == string(filepath.Separator) {
		return ErrFileNameTooShort
	}
	if !hasExt(ext, allowedExt) {
		return ErrFileExtension
	}
	if strings.ContainsAny(stem, forbiddenChars) {
		return ErrFileName
	}
	return nil
}

// HasExt reports whether path ends in ext, ignoring case.
func HasExt(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}

func hasExt(ext string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(ext, a) {
			return true
		}
	}
	return false
}
