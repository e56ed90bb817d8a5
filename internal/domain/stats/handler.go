package stats

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eegdesk/eegdesk/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "scheduler", "reception"))
	readGroup.GET("/stats", h.Summary)
	readGroup.GET("/stats/report", h.Report)
}

func (h *Handler) Summary(c echo.Context) error {
	var refDate time.Time
	if v := c.QueryParam("date"); v != "" {
		var err error
		if refDate, err = time.Parse("2006-01-02", v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		}
	}
	sum, err := h.svc.Summary(c.Request().Context(), refDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) Report(c echo.Context) error {
	from, err := time.Parse("2006-01-02", c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
	}
	rep, err := h.svc.Report(c.Request().Context(), from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rep)
}
