package resumes

import (
	"errors"
	"net/http"

	"resume-builder/core"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type ErrResponse struct {
	HTTPStatusCode int    `json:"-"`
	Message        string `json:"error"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func errBadRequest(err error) render.Renderer {
	return &ErrResponse{HTTPStatusCode: http.StatusBadRequest, Message: err.Error()}
}

var (
	errUnauthorized = &ErrResponse{HTTPStatusCode: http.StatusUnauthorized, Message: "unauthorized"}
	errPremium      = &ErrResponse{HTTPStatusCode: http.StatusForbidden, Message: "premium subscription required"}
	errUnavailable  = &ErrResponse{HTTPStatusCode: http.StatusServiceUnavailable, Message: "resume temporarily unavailable"}
	errEnhancer     = &ErrResponse{HTTPStatusCode: http.StatusBadGateway, Message: "enhancement failed"}
)

// errOperation maps a store error onto its HTTP status.
func errOperation(err error) render.Renderer {
	var (
		fieldErr    *core.InvalidFieldError
		templateErr *core.InvalidTemplateError
		indexErr    *core.IndexOutOfRangeError
	)
	switch {
	case errors.As(err, &fieldErr), errors.As(err, &templateErr):
		return &ErrResponse{HTTPStatusCode: http.StatusUnprocessableEntity, Message: err.Error()}
	case errors.As(err, &indexErr):
		return &ErrResponse{HTTPStatusCode: http.StatusNotFound, Message: err.Error()}
	}
	logrus.WithError(err).Error("Resume operation failed")
	return &ErrResponse{HTTPStatusCode: http.StatusInternalServerError, Message: "internal error"}
}
