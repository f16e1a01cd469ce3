package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/logger"
	"github.com/google/uuid"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The base URL to access the stored files (optional, for generating full URLs)
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the required directory path on the server.
// baseURL is optional; if provided, it will be prepended to returned file paths.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	// Ensure the base path exists
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

// SaveFileWithPath saves a file to a specified subdirectory
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", nil // No file uploaded
	}

	// Open the uploaded file
	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	// Ensure the subdirectory exists
	fullDirPath := ls.basePath
	if subPath != "" {
		fullDirPath = filepath.Join(ls.basePath, subPath)
		if err := os.MkdirAll(fullDirPath, os.ModePerm); err != nil {
			logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
			return "", fmt.Errorf("failed to create subdirectory: %w", err)
		}
	}

	// Generate a unique filename to prevent collisions
	ext := filepath.Ext(fileHeader.Filename)
	uniqueFilename := uuid.New().String() + ext

	// Construct the full destination path
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	// Create the destination file
	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	// Copy the uploaded file content to the destination file
	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		// Attempt to remove the partially created file
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	// Construct the accessible path/URL
	var accessiblePath string

	if ls.baseURL != "" {
		// If baseURL is provided, use it to construct a URL
		// Make sure we don't have double slashes
		if subPath != "" {
			accessiblePath = strings.TrimRight(ls.baseURL, "/") + "/" + subPath + "/" + uniqueFilename
		} else {
			accessiblePath = strings.TrimRight(ls.baseURL, "/") + "/" + uniqueFilename
		}
	} else {
		// If no baseURL, use the relative path to uploads directory
		if subPath != "" {
			accessiblePath = filepath.Join("uploads", subPath, uniqueFilename)
		} else {
			accessiblePath = filepath.Join("uploads", uniqueFilename)
		}
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", uniqueFilename).Str("accessible_path", accessiblePath).Msg("File saved successfully")
	return accessiblePath, nil
}

// SaveFile saves an uploaded file using the default path
func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader) (string, error) {
	return ls.SaveFileWithPath(fileHeader, "")
}

// DeleteFile removes a file from the storage filesystem.
// It accepts the path as stored on the thesis record (e.g.
// uploads/theses/filename.pdf). Deleting a missing file is treated as a
// successful delete so the operation stays idempotent.
func (ls *LocalStorage) DeleteFile(filePath string) error {
	if filePath == "" {
		return nil // Nothing to delete
	}

	physicalPath := ls.GetFullPath(filePath)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", filePath)
	}

	// Check if the file exists first
	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	// Remove the file
	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// GetFullPath returns the full filesystem path for a given stored path or
// URL, preserving any subdirectory below the uploads root.
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	rel := fileURL
	if ls.baseURL != "" && strings.HasPrefix(rel, ls.baseURL) {
		rel = strings.TrimPrefix(rel, ls.baseURL)
	}
	rel = strings.TrimPrefix(rel, "/")
	rel = strings.TrimPrefix(rel, "uploads/")
	rel = filepath.Clean(rel)
	if rel == "" || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}

	return filepath.Join(ls.basePath, rel)
}

