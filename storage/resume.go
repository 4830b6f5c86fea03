package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyFile           = errors.New("file is empty")
)

// resumeTypes maps allowed extensions to the content types they may sniff as.
// DOCX is a zip container and legacy DOC is an OLE2 compound file.
var resumeTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/octet-stream"},
	".docx": {"application/zip", "application/octet-stream"},
}

var canonicalType = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var oleHeader = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Resume is a validated resume upload ready to be stored.
type Resume struct {
	Ext         string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// InspectResume checks the extension, size and leading bytes of an upload.
// The returned Reader replays the sniffed bytes.
func InspectResume(filename string, size, maxBytes int64, r io.Reader) (*Resume, error) {
	if size <= 0 {
		return nil, ErrEmptyFile
	}
	if size > maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	allowed, ok := resumeTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: only PDF, DOC and DOCX are accepted", ErrUnsupportedFileType)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]

	sniffed := http.DetectContentType(head)
	if ext == ".doc" && bytes.HasPrefix(head, oleHeader) {
		sniffed = "application/msword"
	}
	if !matchesAny(sniffed, allowed) {
		return nil, fmt.Errorf("%w: content does not look like %s", ErrUnsupportedFileType, strings.TrimPrefix(ext, "."))
	}

	return &Resume{
		Ext:         ext,
		ContentType: canonicalType[ext],
		Size:        size,
		Reader:      io.MultiReader(bytes.NewReader(head), r),
	}, nil
}

func matchesAny(contentType string, allowed []string) bool {
	base := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	for _, a := range allowed {
		if base == a {
			return true
		}
	}
	return false
}

// ResumeKey builds the storage key for a user's resume. Application
// snapshots get their own key so later profile uploads do not change them.
func ResumeKey(userID, ext string, at time.Time) string {
	return fmt.Sprintf("resumes/%s/%d%s", userID, at.UnixNano(), ext)
}
