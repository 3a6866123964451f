package feed

import "errors"

var (
	ErrImageNotFound   = errors.New("image not found")
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidMimeType = errors.New("file type is not allowed")
	ErrEmptyComment    = errors.New("comment text is empty")
)
