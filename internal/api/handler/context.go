package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxIdentity extracts the claims injected by the Auth middleware. A missing
// user_id means the middleware never ran for this route, so reject with 401
// before any service call.
func ctxIdentity(c echo.Context) (userID, username string, roles []string, err error) {
	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", "", nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	username, _ = c.Get("username").(string)
	roles, _ = c.Get("roles").([]string)
	return userID, username, roles, nil
}

// hasRole reports membership of a role tag in the claim set.
func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
