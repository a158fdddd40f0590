package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/braude/garage/pkg/types"
)

const problemContentType = "application/problem+json"

// writeProblem aborts the request with a problem body.
func writeProblem(c *gin.Context, p types.Problem) {
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	c.Header("Content-Type", problemContentType)
	c.AbortWithStatusJSON(p.Status, p)
}

// badRequest reports a client error with an error key, e.g. "idexists".
func badRequest(c *gin.Context, entity, key, title string) {
	writeProblem(c, types.Problem{
		Title:      title,
		Status:     http.StatusBadRequest,
		Message:    "error." + key,
		EntityName: entity,
		ErrorKey:   key,
	})
}

// writeError maps a backend error to its problem response.
func writeError(c *gin.Context, entity string, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		writeProblem(c, types.Problem{
			Status:     http.StatusNotFound,
			Detail:     err.Error(),
			Message:    "error.http.404",
			EntityName: entity,
		})
	case errors.Is(err, types.ErrInvalidReference):
		writeProblem(c, types.Problem{
			Title:      "Referenced entity does not exist",
			Status:     http.StatusBadRequest,
			Detail:     err.Error(),
			Message:    "error.invalidreference",
			EntityName: entity,
			ErrorKey:   "invalidreference",
		})
	case errors.Is(err, types.ErrInvalidFilter):
		writeProblem(c, types.Problem{
			Title:      "Invalid query",
			Status:     http.StatusBadRequest,
			Detail:     err.Error(),
			Message:    "error.invalidfilter",
			EntityName: entity,
			ErrorKey:   "invalidfilter",
		})
	case errors.Is(err, types.ErrInvalidData), errors.Is(err, types.ErrInvalidID):
		writeProblem(c, types.Problem{
			Title:      "Method argument not valid",
			Status:     http.StatusBadRequest,
			Detail:     err.Error(),
			Message:    "error.validation",
			EntityName: entity,
			ErrorKey:   "validation",
		})
	default:
		_ = c.Error(err)
		writeProblem(c, types.Problem{
			Status:  http.StatusInternalServerError,
			Message: "error.http.500",
		})
	}
}
