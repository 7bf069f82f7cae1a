package common

import "strings"

// FileCategory is the message kind an uploaded file maps to.
type FileCategory string

const (
	FileCategoryImage FileCategory = "image"
	FileCategoryFile  FileCategory = "file"
)

func (fc FileCategory) String() string {
	return string(fc)
}

func (fc FileCategory) IsValid() bool {
	return fc == FileCategoryImage || fc == FileCategoryFile
}

func IsImageMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

func DetectFileType(mimeType string) FileCategory {
	if IsImageMIME(mimeType) {
		return FileCategoryImage
	}
	return FileCategoryFile
}

// IsGenericMIME reports whether a declared content type carries no real
// information and should be replaced by sniffing.
func IsGenericMIME(mimeType string) bool {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "", "application/octet-stream", "binary/octet-stream":
		return true
	}
	return false
}
