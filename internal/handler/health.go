package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports liveness. It intentionally avoids touching MySQL so a
// degraded database does not take the probe down with it.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
