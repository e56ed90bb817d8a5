package importer

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eegdesk/eegdesk/internal/platform/auth"
)

type Handler struct {
	imp *Importer
}

func NewHandler(imp *Importer) *Handler {
	return &Handler{imp: imp}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.POST("/import", h.Import)
}

func (h *Handler) Import(c echo.Context) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	if len(data) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "empty backup file")
	}
	sum, err := h.imp.Run(c.Request().Context(), data)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, sum)
}
