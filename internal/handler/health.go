package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports liveness. No database round-trip: the process being
// able to answer is the signal the orchestrator probes for.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
