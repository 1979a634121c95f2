package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/zepiy/stockmeta/internal/export"
	"github.com/zepiy/stockmeta/internal/models"
)

func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	snap := h.orch.Store().Snapshot()
	if snap.ProcessedCount() == 0 {
		h.writeError(w, "No processed assets to export", http.StatusConflict)
		return
	}

	var opts []export.ArchiveOption
	if q := r.URL.Query().Get("parquet"); q == "1" || q == "true" {
		opts = append(opts, export.WithParquetManifest())
	}

	var buf bytes.Buffer
	if _, err := export.WriteArchive(&buf, snap.Entries(), opts...); err != nil {
		h.writeError(w, "Failed to build archive: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeAttachment(w, "application/zip", h.cfg.ArchiveName, buf.Bytes())
}

func (h *Handler) HandleSiteCSV(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	site, err := models.ParseSite(chi.URLParam(r, "site"))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, ok := h.orch.Store().Get(index)
	if !ok {
		h.writeError(w, fmt.Sprintf("No asset at index %d", index), http.StatusNotFound)
		return
	}

	name, content, err := export.SiteCSV(site, entry.Result, r.URL.Query().Get("filename"))
	if err != nil {
		if errors.Is(err, export.ErrNotGenerated) {
			h.writeError(w, err.Error(), http.StatusConflict)
			return
		}
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeAttachment(w, "text/csv; charset=utf-8", name, content)
}

// HandleAssetDownload serves the original bytes of one asset under its
// generated (or caller supplied) filename
func (h *Handler) HandleAssetDownload(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	entry, ok := h.orch.Store().Get(index)
	if !ok {
		h.writeError(w, fmt.Sprintf("No asset at index %d", index), http.StatusNotFound)
		return
	}

	name := r.URL.Query().Get("filename")
	if name == "" && entry.Result != nil {
		name = entry.Result.Filename
	}
	if name == "" {
		name = entry.Asset.Name
	}

	mimeType := entry.Asset.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	writeAttachment(w, mimeType, name, entry.Asset.Data)
}

func writeAttachment(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", strings.ReplaceAll(name, `"`, "'")))
	if _, err := w.Write(data); err != nil {
		slog.Error("Unable to write download", "name", name, "err", err)
	}
}
