package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mpss/storefront/internal/photos"
)

const (
	defaultPhotoQuality = 80
	photoCacheControl   = "public, max-age=31536000"
)

func (h *Handler) photoOptions(r *http.Request) photos.Options {
	quality := h.photoQuality
	if quality <= 0 {
		quality = defaultPhotoQuality
	}
	return photos.ParseOptions(r.URL.Query(), quality)
}

// ServePhoto sends the original file, or a resized copy when w or h is
// given.
func (h *Handler) ServePhoto(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	path, err := h.photos.Library().Path(filename)
	if err != nil {
		h.respondErr(w, r, err, "Server error while processing photo")
		return
	}

	opts := h.photoOptions(r)
	if !opts.Resizes() {
		http.ServeFile(w, r, path)
		return
	}

	h.serveResized(w, r, filename, path, opts)
}

func (h *Handler) serveResized(w http.ResponseWriter, r *http.Request, filename, path string, opts photos.Options) {
	etag := opts.ETag(filename)
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", photoCacheControl)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	rendered, err := h.photos.Render(r.Context(), filename, opts)
	if errors.Is(err, photos.ErrUnsupported) {
		http.ServeFile(w, r, path)
		return
	}
	if err != nil {
		h.respondErr(w, r, err, "Server error while processing photo")
		return
	}

	w.Header().Set("Content-Type", rendered.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(rendered.Body)))
	w.Header().Set("Cache-Control", photoCacheControl)
	w.Header().Set("ETag", rendered.ETag)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rendered.Body)
}

func (h *Handler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	images, err := h.photos.Library().Images()
	if err != nil {
		h.respondErr(w, r, err, "Server error while fetching photos")
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{
		"totalImages": len(images),
		"baseUrl":     h.photos.Library().BaseURL(),
		"images":      images,
	})
}

func (h *Handler) RandomPhoto(w http.ResponseWriter, r *http.Request) {
	image, err := h.photos.Library().Random()
	if errors.Is(err, photos.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No images found")
		return
	}
	if err != nil {
		h.respondErr(w, r, err, "Server error while fetching random photo")
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{"image": image})
}

// GetPhoto describes one photo, or behaves like ServePhoto when resize
// parameters are present.
func (h *Handler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	path, err := h.photos.Library().Path(filename)
	if err != nil {
		h.respondErr(w, r, err, "Server error while processing photo")
		return
	}

	opts := h.photoOptions(r)
	if !opts.Resizes() {
		respondData(w, http.StatusOK, "", h.photos.Library().Describe(filename))
		return
	}

	h.serveResized(w, r, filename, path, opts)
}
