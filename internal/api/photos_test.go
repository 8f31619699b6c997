package api

import (
	"bytes"
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/mpss/storefront/internal/photos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePhoto(t *testing.T, dir, name string) {
	t.Helper()
	img := imaging.New(200, 100, color.NRGBA{G: 200, A: 255})
	require.NoError(t, imaging.Save(img, filepath.Join(dir, name)))
}

func TestServePhoto(t *testing.T) {
	s := newTestServer(t)
	writePhoto(t, s.photoDir, "tee.png")

	rec := s.do(t, http.MethodGet, "/photos/tee.png", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	original, err := os.ReadFile(filepath.Join(s.photoDir, "tee.png"))
	require.NoError(t, err)
	assert.Equal(t, original, rec.Body.Bytes())

	rec = s.do(t, http.MethodGet, "/photos/tee.png?w=50&h=50&fit=fill", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=31536000", rec.Header().Get("Cache-Control"))
	assert.Equal(t, `"tee.png-50-50-fill-80"`, rec.Header().Get("ETag"))

	img, err := imaging.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	req := httptest.NewRequest(http.MethodGet, "/photos/tee.png?w=50&h=50&fit=fill", nil)
	req.Header.Set("If-None-Match", `"tee.png-50-50-fill-80"`)
	rec = httptest.NewRecorder()
	s.routes.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())

	rec = s.do(t, http.MethodGet, "/photos/tee.png?w=6000&h=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"tee.png-4000-10-cover-80"`, rec.Header().Get("ETag"))
	img, err = imaging.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, photos.MaxDimension, img.Bounds().Dx())

	rec = s.do(t, http.MethodGet, "/photos/missing.png?w=50", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Image not found", decodeResponse(t, rec).Message)
}

func TestServePhotoUnsupportedFormatFallsBack(t *testing.T) {
	s := newTestServer(t)
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"/>`)
	require.NoError(t, os.WriteFile(filepath.Join(s.photoDir, "logo.svg"), svg, 0o644))

	rec := s.do(t, http.MethodGet, "/photos/logo.svg?w=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, svg, rec.Body.Bytes())
	assert.Empty(t, rec.Header().Get("ETag"))
}

func TestPhotoCatalog(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/photos/random", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No images found", decodeResponse(t, rec).Message)

	writePhoto(t, s.photoDir, "b.png")
	writePhoto(t, s.photoDir, "a photo.png")
	require.NoError(t, os.WriteFile(filepath.Join(s.photoDir, "notes.txt"), []byte("x"), 0o644))

	rec = s.do(t, http.MethodGet, "/api/photos", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		TotalImages int            `json:"totalImages"`
		BaseURL     string         `json:"baseUrl"`
		Images      []photos.Image `json:"images"`
	}
	require.NoError(t, json.Unmarshal(decodeResponse(t, rec).Data, &list))
	assert.Equal(t, 2, list.TotalImages)
	assert.Equal(t, "http://localhost:5000/photos", list.BaseURL)
	assert.Equal(t, photos.Image{
		Filename: "a photo.png",
		URL:      "http://localhost:5000/photos/a%20photo.png",
		Name:     "a photo",
	}, list.Images[0])

	rec = s.do(t, http.MethodGet, "/api/photos/random", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var random struct {
		Image photos.Image `json:"image"`
	}
	require.NoError(t, json.Unmarshal(decodeResponse(t, rec).Data, &random))
	assert.Contains(t, []string{"a photo.png", "b.png"}, random.Image.Filename)

	rec = s.do(t, http.MethodGet, "/api/photos/b.png", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"filename":"b.png","url":"http://localhost:5000/photos/b.png","name":"b"}`,
		string(decodeResponse(t, rec).Data))

	rec = s.do(t, http.MethodGet, "/api/photos/b.png?w=20", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"b.png-20-0-cover-80"`, rec.Header().Get("ETag"))
	img, err := imaging.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
}
