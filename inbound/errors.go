package inbound

import (
	"encoding/json"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-webflow/core"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message  string `json:"message"`
	TextCode string `json:"text_code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Message: "internal error", TextCode: core.AppErrorInternal}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		body.Message = rich.Message
		body.TextCode = rich.TextCode
		if rich.Code > 0 {
			status = rich.Code
		} else {
			status = statusForCategory(rich.Category)
		}
	} else if err != nil {
		body.Message = err.Error()
	}

	writeJSON(w, status, errorEnvelope{Error: body})
}

func statusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func methodNotAllowed(method string) error {
	return goerrors.New("inbound: method not allowed", goerrors.CategoryBadInput).
		WithCode(http.StatusMethodNotAllowed).
		WithTextCode(core.AppErrorBadInput).
		WithMetadata(map[string]any{"method": method})
}
