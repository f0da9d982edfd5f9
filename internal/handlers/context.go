package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories"
	"github.com/Safa-Alshukaili/mini-pro/internal/services"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the id of the authenticated user, or 0 when
// the request carried no token.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

// actingUser resolves who performs a write. The token wins when present and
// must agree with any userId sent in the body.
func actingUser(c echo.Context, bodyUserID uint) (uint, error) {
	tokenUserID := getUserIDFromContext(c)
	if tokenUserID == 0 {
		return bodyUserID, nil
	}
	if bodyUserID != 0 && bodyUserID != tokenUserID {
		return 0, echo.NewHTTPError(http.StatusForbidden, "userId does not match the authenticated user")
	}
	return tokenUserID, nil
}

// requireSelf rejects changes to another user's account
func requireSelf(c echo.Context, userID uint) error {
	tokenUserID := getUserIDFromContext(c)
	if tokenUserID != 0 && tokenUserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only change your own account")
	}
	return nil
}

func parseUserID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid user id")
	}
	return uint(id), nil
}

// httpError maps domain errors onto HTTP responses. Anything unexpected is
// logged and answered with the generic fallback message.
func httpError(c echo.Context, err error, fallback string) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Reason)
	case errors.Is(err, repositories.ErrPostNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	case errors.Is(err, repositories.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	case errors.Is(err, repositories.ErrInvalidID):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	c.Logger().Errorf("%s: %v", fallback, err)
	return echo.NewHTTPError(http.StatusInternalServerError, fallback)
}

// bindAndValidate binds the request into req and runs the registered validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}
