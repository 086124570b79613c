package http

import (
	"errors"
	"net/http"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/internal/ranker/config"
	"golang-stock-ranker/internal/ranker/dto"
	"golang-stock-ranker/internal/ranker/service"
	"golang-stock-ranker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RankingHandler serves the latest ranking table over HTTP.
type RankingHandler struct {
	cfg            *config.Config
	rankingService service.RankingService
	logger         *logger.Logger
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(cfg *config.Config, rankingService service.RankingService, logger *logger.Logger) *RankingHandler {
	return &RankingHandler{cfg: cfg, rankingService: rankingService, logger: logger}
}

// RegisterRoutes registers the ranking routes to the Echo group.
func (h *RankingHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetRankings)
	g.GET("/exclusions", h.GetExclusions)
}

// GetRankings returns the latest ranking table.
func (h *RankingHandler) GetRankings(c echo.Context) error {
	table, err := h.rankingService.Latest()
	if err != nil {
		if errors.Is(err, entity.ErrNoTable) {
			return c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Error("Failed to load ranking table", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	response := dto.NewRankingResponse(table, h.cfg.Ranking.MAWindows, h.cfg.Ranking.VMAWindows)
	return c.JSON(http.StatusOK, response)
}

// GetExclusions returns the symbols excluded from the latest run.
func (h *RankingHandler) GetExclusions(c echo.Context) error {
	table, err := h.rankingService.Latest()
	if err != nil {
		if errors.Is(err, entity.ErrNoTable) {
			return c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Error("Failed to load ranking table", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, dto.NewExclusionsResponse(table))
}
