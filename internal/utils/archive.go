package utils

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// CreateZipFromFiles creates a zip archive with one root-level entry per file.
// Entries are written in name order; timestamps are the time of the call.
func CreateZipFromFiles(files map[string]string) (*bytes.Buffer, error) {
	zipBuffer := new(bytes.Buffer)
	zipWriter := zip.NewWriter(zipBuffer)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	modified := time.Now()
	for _, name := range names {
		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modified,
		}
		fileWriter, err := zipWriter.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := io.WriteString(fileWriter, files[name]); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", name, err)
		}
	}

	// Close writes the central directory; the archive is unusable without it
	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}

	return zipBuffer, nil
}

// ZipReadResult holds the text entries read from an archive and the entries skipped
type ZipReadResult struct {
	Files   map[string]string
	Skipped []string
}

// ReadZipFiles extracts text files from a zip archive into a flat mapping.
// Nested entries are flattened to their base name (later entries win),
// directories are ignored, and entries that are oversized or not valid UTF-8
// are reported in Skipped.
func ReadZipFiles(data []byte, maxEntryBytes int64) (*ZipReadResult, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip file: %w", err)
	}

	result := &ZipReadResult{Files: make(map[string]string)}
	for _, entry := range zipReader.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		name := path.Base(strings.ReplaceAll(entry.Name, "\\", "/"))
		if name == "." || name == "/" || name == ".." || strings.HasPrefix(entry.Name, "__MACOSX/") {
			result.Skipped = append(result.Skipped, entry.Name)
			continue
		}

		if maxEntryBytes > 0 && entry.UncompressedSize64 > uint64(maxEntryBytes) {
			result.Skipped = append(result.Skipped, entry.Name)
			continue
		}

		content, err := readZipEntry(entry, maxEntryBytes)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(content) {
			result.Skipped = append(result.Skipped, entry.Name)
			continue
		}

		result.Files[name] = string(content)
	}

	return result, nil
}

func readZipEntry(entry *zip.File, maxEntryBytes int64) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open zip entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	var reader io.Reader = rc
	if maxEntryBytes > 0 {
		// Header sizes can lie; cap the actual read too
		reader = io.LimitReader(rc, maxEntryBytes+1)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip entry %s: %w", entry.Name, err)
	}
	if maxEntryBytes > 0 && int64(len(content)) > maxEntryBytes {
		return nil, fmt.Errorf("zip entry %s exceeds %d bytes", entry.Name, maxEntryBytes)
	}
	return content, nil
}
