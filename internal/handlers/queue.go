package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/zepiy/stockmeta/internal/batch"
	"github.com/zepiy/stockmeta/internal/intake"
	"github.com/zepiy/stockmeta/internal/models"
	"github.com/zepiy/stockmeta/internal/queue"
)

// AssetView is one queue entry as exposed over the API
type AssetView struct {
	Index     int                      `json:"index"`
	Name      string                   `json:"name"`
	MIMEType  string                   `json:"mimeType"`
	Kind      models.Kind              `json:"kind"`
	Size      string                   `json:"size"`
	Active    bool                     `json:"active"`
	Processed bool                     `json:"processed"`
	Result    *models.GenerationResult `json:"result,omitempty"`
}

// QueueView is the queue as exposed over the API
type QueueView struct {
	Assets      []AssetView    `json:"assets"`
	Active      int            `json:"active"`
	Processed   int            `json:"processed"`
	Unprocessed int            `json:"unprocessed"`
	Busy        bool           `json:"busy"`
	Progress    batch.Progress `json:"progress"`
}

func (h *Handler) queueView() QueueView {
	snap := h.orch.Store().Snapshot()
	view := QueueView{
		Assets:      make([]AssetView, 0, len(snap.Assets)),
		Active:      snap.Active,
		Processed:   snap.ProcessedCount(),
		Unprocessed: len(snap.Assets) - snap.ProcessedCount(),
		Busy:        h.orch.Busy(),
		Progress:    h.orch.Progress(),
	}
	for _, e := range snap.Entries() {
		view.Assets = append(view.Assets, AssetView{
			Index:     e.Index,
			Name:      e.Asset.Name,
			MIMEType:  e.Asset.MIMEType,
			Kind:      e.Asset.Kind,
			Size:      humanize.Bytes(uint64(len(e.Asset.Data))),
			Active:    e.Index == snap.Active,
			Processed: e.Processed(),
			Result:    e.Result,
		})
	}
	return view
}

func (h *Handler) HandleQueue(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.queueView())
}

func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	if !h.orch.Store().Select(index) {
		h.writeError(w, fmt.Sprintf("No asset at index %d", index), http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, h.queueView())
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexParam(w, r)
	if !ok || h.refuseWhileBusy(w) {
		return
	}
	if err := h.orch.Store().Remove(index); err != nil {
		if errors.Is(err, queue.ErrIndexOutOfRange) {
			h.writeError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.writeError(w, "Failed to remove asset: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, h.queueView())
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if h.refuseWhileBusy(w) {
		return
	}
	h.orch.Store().Clear()
	h.writeJSON(w, http.StatusOK, h.queueView())
}

type uploadResponse struct {
	Added    int       `json:"added"`
	Rejected []string  `json:"rejected"`
	Queue    QueueView `json:"queue"`
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if h.refuseWhileBusy(w) {
		return
	}

	var (
		candidates []intake.Candidate
		err        error
	)
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		candidates, err = h.urlCandidates(r)
	} else {
		candidates, err = h.formCandidates(w, r)
	}
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	accepted, rejected := intake.Partition(candidates)
	h.orch.Store().Append(intake.ToAssets(accepted)...)

	resp := uploadResponse{Added: len(accepted), Rejected: make([]string, 0, len(rejected))}
	for _, c := range rejected {
		resp.Rejected = append(resp.Rejected, c.Name)
	}
	slog.Info("Assets uploaded", "added", resp.Added, "rejected", len(resp.Rejected))
	resp.Queue = h.queueView()
	h.writeJSON(w, http.StatusOK, resp)
}

type urlUploadRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
}

func (h *Handler) urlCandidates(r *http.Request) ([]intake.Candidate, error) {
	var request urlUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := h.validate.Struct(request); err != nil {
		return nil, fmt.Errorf("image_url must be a valid URL")
	}

	c, err := h.fetcher.Fetch(r.Context(), request.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", request.ImageURL, err)
	}
	return []intake.Candidate{c}, nil
}

func (h *Handler) formCandidates(w http.ResponseWriter, r *http.Request) ([]intake.Candidate, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes())
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, fmt.Errorf("failed to parse upload: %w", err)
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("no files in upload")
	}

	candidates := make([]intake.Candidate, 0, len(headers))
	for _, fh := range headers {
		c, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func readPart(fh *multipart.FileHeader) (intake.Candidate, error) {
	f, err := fh.Open()
	if err != nil {
		return intake.Candidate{}, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return intake.Candidate{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = intake.DetectMIME(data)
	}
	return intake.Candidate{Name: fh.Filename, MIMEType: mimeType, Data: data}, nil
}
