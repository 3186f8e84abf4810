package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrCredentialNotFound is returned by credential stores when no token has
// been persisted for the requested site.
var ErrCredentialNotFound = errors.New("core: credential not found")

const (
	AppErrorBadInput           = "APP_BAD_INPUT"
	AppErrorConfigInvalid      = "APP_CONFIG_INVALID"
	AppErrorAuthExchangeFailed = "APP_AUTH_EXCHANGE_FAILED"
	AppErrorProvisioningFailed = "APP_PROVISIONING_FAILED"
	AppErrorDeliveryRejected   = "APP_DELIVERY_REJECTED"
	AppErrorStoreUnavailable   = "APP_STORE_UNAVAILABLE"
	AppErrorCredentialNotFound = "APP_CREDENTIAL_NOT_FOUND"
	AppErrorInternal           = "APP_INTERNAL_ERROR"
)

func appErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureAppErrorEnvelope(richErr)
	}

	if errors.Is(err, ErrCredentialNotFound) {
		return newAppError(err.Error(), goerrors.CategoryNotFound, AppErrorCredentialNotFound)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "delivery rejected"):
		return newAppError(err.Error(), goerrors.CategoryAuthz, AppErrorDeliveryRejected)
	case strings.Contains(msg, "token endpoint"), strings.Contains(msg, "token request"):
		return newAppError(err.Error(), goerrors.CategoryAuth, AppErrorAuthExchangeFailed)
	case strings.Contains(msg, "credential store"):
		return newAppError(err.Error(), goerrors.CategoryExternal, AppErrorStoreUnavailable)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
		return newAppError(err.Error(), goerrors.CategoryBadInput, AppErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureAppErrorEnvelope(mapped)
}

func newAppError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureAppErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureAppErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = appHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultAppTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultAppTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return AppErrorBadInput
	case goerrors.CategoryNotFound:
		return AppErrorCredentialNotFound
	case goerrors.CategoryAuth:
		return AppErrorAuthExchangeFailed
	case goerrors.CategoryAuthz:
		return AppErrorDeliveryRejected
	case goerrors.CategoryExternal:
		return AppErrorStoreUnavailable
	case goerrors.CategoryOperation:
		return AppErrorProvisioningFailed
	default:
		return AppErrorInternal
	}
}

func appHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
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
