// Package photos serves the product photography folder and resizes images
// on request.
package photos

import (
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNotFound = errors.New("image not found")

var Extensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}

type Image struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Name     string `json:"name"`
}

// Library lists the images in one directory. The directory is re-read on
// every call so files dropped in while running show up.
type Library struct {
	dir     string
	baseURL string
}

func NewLibrary(dir, baseURL string) *Library {
	return &Library{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (l *Library) BaseURL() string { return l.baseURL }

func isImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Files returns the image file names, sorted. A missing directory is an
// empty library.
func (l *Library) Files() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read photo directory: %w", err)
	}

	files := []string{}
	for _, e := range entries {
		if !e.IsDir() && isImage(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Path resolves a file name to its location on disk. Only names present in
// the listing resolve, which keeps lookups inside the directory.
func (l *Library) Path(filename string) (string, error) {
	files, err := l.Files()
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f == filename {
			return filepath.Join(l.dir, f), nil
		}
	}
	return "", ErrNotFound
}

func (l *Library) Describe(filename string) Image {
	return Image{
		Filename: filename,
		URL:      l.baseURL + "/" + url.PathEscape(filename),
		Name:     strings.TrimSuffix(filename, filepath.Ext(filename)),
	}
}

func (l *Library) Images() ([]Image, error) {
	files, err := l.Files()
	if err != nil {
		return nil, err
	}
	images := make([]Image, len(files))
	for i, f := range files {
		images[i] = l.Describe(f)
	}
	return images, nil
}

func (l *Library) Random() (Image, error) {
	images, err := l.Images()
	if err != nil {
		return Image{}, err
	}
	if len(images) == 0 {
		return Image{}, ErrNotFound
	}
	return images[rand.Intn(len(images))], nil
}
