package webapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
	"github.com/mediavault/vault/pkg/mvingest"
	"github.com/mediavault/vault/pkg/mvstream"
)

func errorResponse(ctx echo.Context, httpError int, msg string) error {
	return ctx.JSON(httpError, map[string]string{"error": msg})
}

// errorResponseFromErr maps well-known failure classes onto status codes.
// Anything unclassified comes back as a generic 500 so internals never leak
// into responses.
func errorResponseFromErr(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errorResponse(ctx, http.StatusNotFound, "not found")
	case errors.Is(err, mvingest.ErrBadRequest):
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, mvstream.ErrInvalidRange):
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	default:
		return errorResponse(ctx, http.StatusInternalServerError, "internal error")
	}
}

// getUser retrieves the authenticated user placed on the context by the
// API key middleware.
func getUser(ctx echo.Context) (*mvmodel.User, bool) {
	user, ok := ctx.Get("User").(*mvmodel.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// mediaIDParam parses the :id path param.
func mediaIDParam(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid media id %q", ctx.Param("id"))
	}
	return id, nil
}
