package reporting

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/eegdesk/eegdesk/internal/platform/auth"
)

// MeasureDefinition defines a reporting measure with its SQL query.
type MeasureDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SQL         string   `json:"sql"`
	Parameters  []string `json:"parameters"`
}

// MeasureReport holds the results of evaluating a measure.
type MeasureReport struct {
	MeasureID   string                   `json:"measure_id"`
	MeasureName string                   `json:"measure_name"`
	GeneratedAt time.Time                `json:"generated_at"`
	Results     []map[string]interface{} `json:"results"`
}

// PredefinedMeasures is the list of available reporting measures. All of
// them exclude archived orders.
var PredefinedMeasures = []MeasureDefinition{
	{
		ID:          "pending-by-priority",
		Name:        "Fila pendente por prioridade",
		Description: "Pending, non-archived orders grouped by priority (1 = most urgent)",
		SQL: `SELECT priority, COUNT(*) AS total FROM exam_order
			WHERE status = 'Pendente' AND archived_at IS NULL
			GROUP BY priority ORDER BY priority ASC`,
	},
	{
		ID:          "scheduled-per-day",
		Name:        "Agendamentos por dia",
		Description: "Scheduled exams per calendar day over the next 30 days",
		SQL: `SELECT scheduled_date, COUNT(*) AS total FROM exam_order
			WHERE status = 'Agendado' AND archived_at IS NULL
			  AND scheduled_date >= CURRENT_DATE AND scheduled_date < CURRENT_DATE + 30
			GROUP BY scheduled_date ORDER BY scheduled_date ASC`,
	},
	{
		ID:          "orders-by-municipality",
		Name:        "Pedidos por município",
		Description: "Non-archived orders grouped by patient municipality",
		SQL: `SELECT COALESCE(p.municipality, 'Nao informado') AS municipality, COUNT(*) AS total
			FROM exam_order o JOIN patient p ON p.id = o.patient_id
			WHERE o.archived_at IS NULL
			GROUP BY p.municipality ORDER BY total DESC`,
	},
	{
		ID:          "sedation-mix",
		Name:        "Exames com e sem sedação",
		Description: "Non-archived orders grouped by sedation requirement",
		SQL: `SELECT sedation, COUNT(*) AS total FROM exam_order
			WHERE archived_at IS NULL
			GROUP BY sedation ORDER BY total DESC`,
	},
	{
		ID:          "physician-volume",
		Name:        "Volume por médico solicitante",
		Description: "Non-archived orders grouped by requesting physician",
		SQL: `SELECT COALESCE(requesting_physician, 'Nao informado') AS physician, COUNT(*) AS total
			FROM exam_order
			WHERE archived_at IS NULL
			GROUP BY requesting_physician ORDER BY total DESC`,
	},
	{
		ID:          "capacity-overbooking",
		Name:        "Dias com excesso de agendamentos",
		Description: "Configured days where scheduled exams exceed the advisory capacity",
		SQL: `SELECT c.date, c.capacity, COUNT(o.id) AS used
			FROM capacity_config c
			LEFT JOIN exam_order o ON o.scheduled_date = c.date
			  AND o.status = 'Agendado' AND o.archived_at IS NULL
			GROUP BY c.date, c.capacity
			HAVING COUNT(o.id) > c.capacity
			ORDER BY c.date ASC`,
	},
}

// Handler provides HTTP handlers for the reporting API.
type Handler struct {
	pool *pgxpool.Pool
}

// NewHandler creates a new reporting handler.
func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{pool: pool}
}

// RegisterRoutes registers the reporting API routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	reportGroup := api.Group("/reports", auth.RequireRole("admin", "physician", "scheduler"))
	reportGroup.GET("/measures", h.ListMeasures)
	reportGroup.GET("/measures/:id/evaluate", h.EvaluateMeasure)
}

// ListMeasures returns all available measure definitions.
func (h *Handler) ListMeasures(c echo.Context) error {
	return c.JSON(http.StatusOK, PredefinedMeasures)
}

// EvaluateMeasure executes a measure's SQL and returns the results.
func (h *Handler) EvaluateMeasure(c echo.Context) error {
	measure := FindMeasure(c.Param("id"))
	if measure == nil {
		return echo.NewHTTPError(http.StatusNotFound, "measure not found")
	}

	results, err := h.executeSQL(c.Request().Context(), measure.SQL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("query failed: %v", err))
	}

	return c.JSON(http.StatusOK, MeasureReport{
		MeasureID:   measure.ID,
		MeasureName: measure.Name,
		GeneratedAt: time.Now(),
		Results:     results,
	})
}

// executeSQL runs a SQL query and returns results as a slice of maps.
func (h *Handler) executeSQL(ctx context.Context, sql string) ([]map[string]interface{}, error) {
	rows, err := h.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	var results []map[string]interface{}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(fieldDescs))
		for i, fd := range fieldDescs {
			row[string(fd.Name)] = values[i]
		}
		results = append(results, row)
	}

	if results == nil {
		results = []map[string]interface{}{}
	}

	return results, nil
}

// FindMeasure looks up a measure by ID.
func FindMeasure(id string) *MeasureDefinition {
	for i := range PredefinedMeasures {
		if PredefinedMeasures[i].ID == id {
			return &PredefinedMeasures[i]
		}
	}
	return nil
}
