// Package filex normalizes upload inputs (paths, byte slices, readers) into
// bytes plus derived metadata: display name, content type, and image
// dimensions where applicable.
package filex

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Input is one upload source. Exactly one of Path, Data, or Reader must be
// set. Name overrides the derived display name; ContentType overrides
// sniffing.
type Input struct {
	Path        string
	Data        []byte
	Reader      io.Reader
	Name        string
	ContentType string
}

// Normalized is the result of resolving an Input.
type Normalized struct {
	Data        []byte
	Name        string
	ContentType string
	Width       int
	Height      int
}

// extension map consulted before content sniffing; sniffing cannot tell
// several text formats apart.
var mimeByExt = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".json": "application/json",
	".xml":  "application/xml",
	".html": "text/html",
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".mp4":  "video/mp4",
	".mp3":  "audio/mpeg",
	".zip":  "application/zip",
	".gz":   "application/gzip",
}

// Normalize resolves in to bytes and derived metadata.
func Normalize(in Input) (*Normalized, error) {
	n := &Normalized{Name: in.Name, ContentType: in.ContentType}

	switch {
	case in.Path != "":
		data, err := os.ReadFile(in.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", in.Path, err)
		}
		n.Data = data
		if n.Name == "" {
			n.Name = filepath.Base(in.Path)
		}
	case in.Data != nil:
		n.Data = in.Data
	case in.Reader != nil:
		data, err := io.ReadAll(in.Reader)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		n.Data = data
	default:
		return nil, fmt.Errorf("empty input: one of path, data or reader is required")
	}

	if n.Name == "" {
		n.Name = "untitled"
	}
	if n.ContentType == "" {
		n.ContentType = DetectContentType(n.Name, n.Data)
	}
	if strings.HasPrefix(n.ContentType, "image/") {
		n.Width, n.Height = ImageDimensions(n.Data)
	}
	return n, nil
}

// DetectContentType derives a MIME type from the file extension, falling back
// to content sniffing.
func DetectContentType(name string, data []byte) string {
	if ct, ok := mimeByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	ct := http.DetectContentType(data)
	// sniffing appends a charset parameter to text types
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// ImageDimensions decodes just the image header. Returns zeros when the data
// is not a decodable image.
func ImageDimensions(data []byte) (w, h int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
