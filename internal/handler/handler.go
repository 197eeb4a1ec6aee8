package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/dto"
	"github.com/BarkinBalci/bi-warehouse/internal/report"
)

// Pinger checks the warehouse connection
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	reports report.Runner
	store   Pinger
	router  *gin.Engine
	log     *zap.Logger
}

func NewHandler(reports report.Runner, store Pinger, log *zap.Logger) *Handler {
	h := &Handler{
		reports: reports,
		store:   store,
		router:  gin.New(),
		log:     log,
	}

	h.router.Use(gin.Recovery())
	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.GET("/reports", h.listReports)
	h.router.GET("/reports/:name", h.getReport)
}

// healthCheck handles GET /health
func (h *Handler) healthCheck(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.log.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable"})
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// listReports handles GET /reports
func (h *Handler) listReports(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ListReportsResponse{Reports: h.reports.Names()})
}

// getReport handles GET /reports/:name
func (h *Handler) getReport(c *gin.Context) {
	var req dto.GetReportRequest

	if err := c.ShouldBindUri(&req); err != nil {
		h.log.Warn("Invalid report request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	result, err := h.reports.Run(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, report.ErrUnknownReport) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "unknown_report",
				Message: err.Error(),
			})
			return
		}

		h.log.Error("Failed to run report",
			zap.Error(err),
			zap.String("report", req.Name))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	h.log.Info("Report served",
		zap.String("report", result.Name),
		zap.Int("rows", len(result.Rows)))

	c.JSON(http.StatusOK, dto.GetReportResponse{
		Name:     result.Name,
		Columns:  result.Columns,
		Rows:     result.Rows,
		RowCount: len(result.Rows),
	})
}
