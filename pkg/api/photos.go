package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/dixieflatline76/Cheese/pkg/gallery"
)

// Photo is one gallery entry in API responses.
type Photo struct {
	gallery.Entry
	URL      string `json:"url"`
	ThumbURL string `json:"thumb_url"`
}

// handleListPhotos returns a page of the gallery, newest first.
// Query: page (from 1), per_page (default 24).
func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	if s.photos == nil {
		writeJSON(w, http.StatusOK, []Photo{})
		return
	}

	page := 1
	perPage := 24
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if pp, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && pp > 0 {
		perPage = min(pp, 200)
	}

	entries, err := s.photos.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	start := min((page-1)*perPage, len(entries))
	end := min(start+perPage, len(entries))

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	base := fmt.Sprintf("%s://%s/photos/", scheme, r.Host)

	result := make([]Photo, 0, end-start)
	for _, e := range entries[start:end] {
		result = append(result, Photo{
			Entry:    e,
			URL:      base + e.Name,
			ThumbURL: base + e.Name + "?thumb=320x240",
		})
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(len(entries)))
	writeJSON(w, http.StatusOK, result)
}

// handlePhoto serves one photo, or a thumbnail of it with ?thumb=WxH.
func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	if s.photos == nil {
		http.NotFound(w, r)
		return
	}
	name := r.PathValue("name")

	if spec := r.URL.Query().Get("thumb"); spec != "" {
		tw, th, ok := parseSize(spec)
		if !ok {
			writeError(w, http.StatusBadRequest, "thumb must be WxH")
			return
		}
		img, err := s.photos.Thumbnail(name, tw, th)
		if err != nil {
			s.photoError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	path, err := s.photos.Resolve(name)
	if err != nil {
		s.photoError(w, err)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) photoError(w http.ResponseWriter, err error) {
	if errors.Is(err, gallery.ErrNotFound) {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// parseSize reads "WxH" with both sides in 1..2000.
func parseSize(s string) (int, int, bool) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(ws)
	h, err2 := strconv.Atoi(hs)
	if err1 != nil || err2 != nil || w < 1 || h < 1 || w > 2000 || h > 2000 {
		return 0, 0, false
	}
	return w, h, true
}
