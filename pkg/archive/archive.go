// Package archive reads book archives (a manifest plus per-page text
// files) and imports them into the library. Containers may be zip, tar.gz,
// or tar.xz; the format is detected from magic bytes, never the file name.
package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ulikunitz/xz"
)

var (
	// ErrManifestMissing means the container held no manifest.json.
	ErrManifestMissing = errors.New("archive: manifest.json missing")
	// ErrManifestMalformed means manifest.json failed to parse or validate.
	ErrManifestMalformed = errors.New("archive: manifest.json malformed")
	// ErrArchiveUnreadable means the blob is not a recognizable container.
	ErrArchiveUnreadable = errors.New("archive: unreadable container")
)

// ManifestName is the required path of the manifest inside the container.
const ManifestName = "manifest.json"

// Manifest declares one book and the volumes the archive carries.
type Manifest struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Author   string           `json:"author,omitempty"`
	SourceID string           `json:"sourceId,omitempty"`
	Language string           `json:"language,omitempty"`
	Volumes  []ManifestVolume `json:"volumes"`
}

// ManifestVolume declares one volume and its page count.
type ManifestVolume struct {
	Volume     int `json:"volume"`
	TotalPages int `json:"totalPages"`
}

// Archive is a fully-read container: a flat name-to-content map.
type Archive struct {
	files map[string][]byte
}

// Open reads a container blob into memory. The compression/container kind
// is detected by magic bytes: zip, gzip tar, xz tar, or a bare tar.
func Open(data []byte) (*Archive, error) {
	switch {
	case len(data) >= 4 && bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return openZip(data)
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArchiveUnreadable, err)
		}
		defer gz.Close()
		return openTar(gz)
	case len(data) >= 6 && bytes.HasPrefix(data, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}):
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArchiveUnreadable, err)
		}
		return openTar(xr)
	case len(data) > 262 && bytes.Equal(data[257:262], []byte("ustar")):
		return openTar(bytes.NewReader(data))
	}
	return nil, ErrArchiveUnreadable
}

func openZip(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveUnreadable, err)
	}
	files := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrArchiveUnreadable, f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrArchiveUnreadable, f.Name, err)
		}
		files[cleanName(f.Name)] = content
	}
	return &Archive{files: files}, nil
}

func openTar(r io.Reader) (*Archive, error) {
	tr := tar.NewReader(r)
	files := make(map[string][]byte)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArchiveUnreadable, err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrArchiveUnreadable, header.Name, err)
		}
		files[cleanName(header.Name)] = content
	}
	return &Archive{files: files}, nil
}

func cleanName(name string) string {
	return strings.TrimPrefix(strings.TrimPrefix(name, "./"), "/")
}

// Manifest locates and validates manifest.json.
func (a *Archive) Manifest() (*Manifest, error) {
	raw, ok := a.files[ManifestName]
	if !ok {
		return nil, ErrManifestMissing
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestMalformed, err)
	}
	if strings.TrimSpace(m.ID) == "" {
		return nil, fmt.Errorf("%w: empty id", ErrManifestMalformed)
	}
	if len(m.Volumes) == 0 {
		return nil, fmt.Errorf("%w: no volumes declared", ErrManifestMalformed)
	}
	for _, v := range m.Volumes {
		if v.Volume < 1 {
			return nil, fmt.Errorf("%w: volume number %d", ErrManifestMalformed, v.Volume)
		}
		if v.TotalPages < 0 {
			return nil, fmt.Errorf("%w: negative totalPages for volume %d", ErrManifestMalformed, v.Volume)
		}
	}
	return &m, nil
}

// PageFile returns the content of one page file ("<volume>/<page>.json").
// Absent files are not an error: archives may legally be sparse.
func (a *Archive) PageFile(volume, page int) ([]byte, bool) {
	content, ok := a.files[fmt.Sprintf("%d/%d.json", volume, page)]
	return content, ok
}
