// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Image is one card face ready to be sent to a vision model.
type Image struct {
	// Name is the file basename, used in logs.
	Name string

	// MediaType is the MIME type, e.g. "image/jpeg".
	MediaType string

	Data []byte
}

// mediaTypes maps lower-case file extensions to MIME types.
var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// LoadImage reads an image file. The media type follows the extension and
// falls back to content sniffing.
func LoadImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("reading image %s: %w", filepath.Base(path), err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("image %s is empty", filepath.Base(path))
	}
	mt, ok := mediaTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		mt = http.DetectContentType(data)
	}
	return Image{Name: filepath.Base(path), MediaType: mt, Data: data}, nil
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL returns the image as a data: URL.
func (i Image) DataURL() string {
	return "data:" + i.MediaType + ";base64," + i.Base64()
}

// Format returns the MIME subtype ("jpeg", "png").
func (i Image) Format() string {
	if _, sub, ok := strings.Cut(i.MediaType, "/"); ok {
		return sub
	}
	return i.MediaType
}
