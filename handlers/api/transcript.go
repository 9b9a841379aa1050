package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/middleware"
	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/services/transcript"
	"github.com/nijaru/yt-transcript/utils"
	"github.com/nijaru/yt-transcript/validation"
	"github.com/sirupsen/logrus"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
	maxRequestBody     = 1 << 20
)

type TranscriptHandler struct {
	service   transcript.Service
	validator *validation.Validator
}

type transcriptRequest struct {
	VideoID    string `json:"videoId"`
	VideoURL   string `json:"videoUrl"`
	Timestamps bool   `json:"timestamps"`
}

// raw returns the identifier input, preferring videoId.
func (req transcriptRequest) raw() string {
	if req.VideoID != "" {
		return req.VideoID
	}
	return req.VideoURL
}

type transcriptResponse struct {
	Success    bool             `json:"success"`
	Transcript string           `json:"transcript,omitempty"`
	Segments   []models.Segment `json:"segments,omitempty"`
	Error      string           `json:"error,omitempty"`
}

type resolutionsResponse struct {
	Success     bool                 `json:"success"`
	Resolutions []*models.Resolution `json:"resolutions"`
}

func NewTranscriptHandler(service transcript.Service, validator *validation.Validator) *TranscriptHandler {
	return &TranscriptHandler{
		service:   service,
		validator: validator,
	}
}

// HandleGetTranscript handles GET and POST /get-transcript
func (h *TranscriptHandler) HandleGetTranscript(w http.ResponseWriter, r *http.Request) {
	if err := h.validator.ValidateRequest(r, validation.RequestValidationOpts{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}); err != nil {
		respondError(w, r, err)
		return
	}

	req := parseTranscriptRequest(r)

	videoID, err := h.validator.ExtractRequired(req.raw())
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger := middleware.GetLogger(r.Context()).WithField("video_id", videoID)
	logger.Info("Received transcript request")

	tr, err := h.service.GetTranscript(r.Context(), videoID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	text := tr.FullText
	if req.Timestamps {
		text = utils.FormatTimestamped(tr.Segments)
	}

	logger.WithFields(logrus.Fields{
		"source":   tr.Source,
		"segments": len(tr.Segments),
	}).Info("Transcript served")

	if tr.Source != "" {
		w.Header().Set("X-Transcript-Source", tr.Source)
	}
	respondJSON(w, http.StatusOK, transcriptResponse{
		Success:    true,
		Transcript: text,
		Segments:   tr.Segments,
	})
}

// parseTranscriptRequest reads the query for GET and the JSON body for
// POST. An unreadable body counts as empty.
func parseTranscriptRequest(r *http.Request) transcriptRequest {
	var req transcriptRequest

	if r.Method == http.MethodPost {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
		if err == nil && len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				req = transcriptRequest{}
			}
		}
		return req
	}

	q := r.URL.Query()
	req.VideoID = q.Get("videoId")
	req.VideoURL = q.Get("videoUrl")
	req.Timestamps, _ = strconv.ParseBool(strings.TrimSpace(q.Get("timestamps")))
	return req
}

// HandleRecent handles GET /resolutions
func (h *TranscriptHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	const op = "TranscriptHandler.HandleRecent"

	limit := defaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxRecentLimit {
			respondError(w, r, errors.InvalidInput(op, err, "limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	resolutions, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, resolutionsResponse{Success: true, Resolutions: resolutions})
}
