package filestorage

import (
	"mime/multipart"
)

// FileInfo represents information about a stored file
type FileInfo struct {
	Path     string // Relative or full path where the file is stored
	Filename string // Original filename
	FileSize int64  // Size in bytes
	MimeType string // MIME type of the file
}

// FileStorage defines the interface for thesis document storage. The
// workflow only ever handles the returned paths, never raw bytes.
type FileStorage interface {
	// SaveFile saves a file and returns the path where it was stored
	SaveFile(fileHeader *multipart.FileHeader) (string, error)

	// SaveFileWithPath lets you specify a subdirectory for storing the file
	SaveFileWithPath(fileHeader *multipart.FileHeader, path string) (string, error)

	// DeleteFile removes a file from storage. Deleting a missing file is
	// not an error.
	DeleteFile(filePath string) error

	// GetFullPath returns the full filesystem path for a given file URL
	GetFullPath(fileURL string) string
}
