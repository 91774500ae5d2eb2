package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	errs "github.com/matzehuels/tracklayout/pkg/errors"
	"github.com/matzehuels/tracklayout/pkg/session"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
	ItemID  string    `json:"item_id,omitempty"`
}

// statusFor maps an error to its HTTP status and code.
func statusFor(err error) (int, errs.Code) {
	if errors.Is(err, session.ErrNotFound) {
		return http.StatusNotFound, errs.ErrCodeNotFound
	}
	code := errs.GetCode(err)
	switch {
	case code == errs.ErrCodeNotFound:
		return http.StatusNotFound, code
	case code == errs.ErrCodeUnsupported:
		return http.StatusBadRequest, code
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest, code
	}
	return http.StatusInternalServerError, errs.ErrCodeInternal
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError && errs.GetCode(err) == "" {
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg, ItemID: errs.GetItemID(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
