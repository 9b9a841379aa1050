package validation

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/nijaru/yt-transcript/errors"
)

const (
	minIDLength = 8
	maxIDLength = 15
)

// The id runs up to the first '&', '?', '#' or newline.
var videoURLPattern = regexp.MustCompile(`(?:watch\?v=|youtu\.be/|embed/)([^&\n?#]+)`)

// ExtractVideoID returns the video identifier held in raw, which may be a
// bare id or a watch, short or embed URL.
func ExtractVideoID(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if isBareID(raw) {
		return raw, true
	}
	m := videoURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func isBareID(s string) bool {
	if len(s) < minIDLength || len(s) > maxIDLength {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

type Validator struct {
	maxBodyBytes int64
}

func NewValidator(maxBodyBytes int64) *Validator {
	return &Validator{maxBodyBytes: maxBodyBytes}
}

// ExtractRequired is ExtractVideoID reporting failure as an input error.
func (v *Validator) ExtractRequired(raw string) (string, error) {
	const op = "Validator.ExtractRequired"

	id, ok := ExtractVideoID(raw)
	if !ok {
		return "", errors.InvalidInput(op, nil, "Missing videoId")
	}
	return id, nil
}

type RequestValidationOpts struct {
	AllowedMethods []string
}

// ValidateRequest checks the method and declared size of an inbound request.
func (v *Validator) ValidateRequest(r *http.Request, opts RequestValidationOpts) error {
	const op = "Validator.ValidateRequest"

	if len(opts.AllowedMethods) > 0 {
		allowed := false
		for _, method := range opts.AllowedMethods {
			if strings.EqualFold(r.Method, method) {
				allowed = true
				break
			}
		}
		if !allowed {
			return errors.E(op, nil, fmt.Sprintf("Method %s not allowed", r.Method), http.StatusMethodNotAllowed)
		}
	}

	if v.maxBodyBytes > 0 && r.ContentLength > v.maxBodyBytes {
		return errors.InvalidInput(op, nil, "Request body too large")
	}

	return nil
}
