package api

import (
	"encoding/json"
	"net/http"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/middleware"
	"github.com/sirupsen/logrus"
)

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("Failed to encode response")
	}
}

// respondError writes {success:false, error}. AppErrors keep their code and
// message; anything else is a 500 carrying the error text.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	msg := err.Error()

	if appErr, ok := errors.As(err); ok {
		code = appErr.Code
		msg = appErr.Message
	}

	entry := middleware.GetLogger(r.Context()).WithFields(logrus.Fields{
		"error":  err,
		"status": code,
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request error")
	} else {
		entry.Info("Request rejected")
	}

	respondJSON(w, code, errorResponse{Success: false, Error: msg})
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
