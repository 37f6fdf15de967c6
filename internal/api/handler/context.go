package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// identity is the authenticated caller as injected by the Auth middleware.
type identity struct {
	UserID   string
	Username string
	Email    string
	Role     string
}

// ctxIdentity extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: a missing user id or
// role means the middleware did not run (or the token predates the current
// claim set), so the request is rejected outright.
func ctxIdentity(c echo.Context) (identity, error) {
	id := identity{}
	id.UserID, _ = c.Get("user_id").(string)
	id.Username, _ = c.Get("username").(string)
	id.Email, _ = c.Get("email").(string)
	id.Role, _ = c.Get("role").(string)

	if id.UserID == "" || id.Role == "" {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
