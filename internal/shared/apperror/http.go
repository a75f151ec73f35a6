package apperror

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP resolves any error into the status, code and message written to clients.
// Causes of internal errors are never exposed.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			return HTTPError{
				Status:  appErr.HTTPStatus,
				Code:    appErr.Code,
				Message: "Internal server error",
			}
		}
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		mapped := MapValidationError(verrs)
		return HTTPError{
			Status:  mapped.HTTPStatus,
			Code:    CodeValidation,
			Message: mapped.Message,
		}
	}

	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: "Internal server error",
	}
}
