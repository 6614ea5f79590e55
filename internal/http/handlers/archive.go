package handlers

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"

	"gallery/internal/gallery"
	"gallery/internal/storage"
	"gallery/pkg/zip"
)

func validHash(h string) bool {
	if len(h) != 64 {
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}

// GalleryArchive returns the nine images of a hash, plus its query log when
// present, as a zip download.
func (a *App) GalleryArchive(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	if !validHash(hash) {
		a.error(w, http.StatusBadRequest, "bad_request", "hash must be 64 hex characters")
		return
	}
	if missing := a.Store.MissingImages(hash, gallery.NumImages); len(missing) > 0 {
		a.error(w, http.StatusNotFound, "not_found", fmt.Sprintf("%d of %d images missing", len(missing), gallery.NumImages))
		return
	}

	now := time.Now()
	assets := make([]zip.Asset, 0, gallery.NumImages+1)
	for i := 1; i <= gallery.NumImages; i++ {
		key := storage.ImageKey(hash, i)
		data, err := a.Store.Read(key)
		if err != nil {
			logger(r).Error().Err(err).Str("hash", hash).Msg("read image failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to read images")
			return
		}
		assets = append(assets, zip.Asset{Filename: path.Base(key), Data: data, Modified: now})
	}
	if data, err := a.Store.Read(hash + "/" + storage.QueryFile); err == nil {
		assets = append(assets, zip.Asset{Filename: storage.QueryFile, Data: data, Modified: now})
	}

	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		logger(r).Error().Err(err).Str("hash", hash).Msg("archive failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=gallery-%s.zip", hash[:12]))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
