package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"portfolio-tracker/internal/tracker/dto"
	"portfolio-tracker/internal/tracker/repository"
	"portfolio-tracker/internal/tracker/service"
	"portfolio-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PortfolioHandler handles HTTP requests for the portfolio.
type PortfolioHandler struct {
	portfolioService service.PortfolioService
	logger           *logger.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService service.PortfolioService, logger *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService, logger: logger}
}

// RegisterRoutes registers the portfolio routes to the Echo group.
func (h *PortfolioHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/portfolio", h.GetPortfolio)
	g.POST("/position", h.AddPosition)
	g.PUT("/position/:id", h.UpdatePosition)
	g.DELETE("/position/:id", h.DeletePosition)
	g.POST("/refresh-prices", h.RefreshPrices)
	g.GET("/export", h.ExportCSV)
}

// GetPortfolio returns every position valued at the current price, plus the
// aggregate summary.
func (h *PortfolioHandler) GetPortfolio(c echo.Context) error {
	portfolio, err := h.portfolioService.GetPortfolio(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get portfolio", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ActionResponse{Success: false, Message: "Failed to get portfolio"})
	}
	return c.JSON(http.StatusOK, portfolio)
}

// AddPosition creates a new position after validating its ticker against the
// market data provider.
func (h *PortfolioHandler) AddPosition(c echo.Context) error {
	var req dto.CreatePositionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ActionResponse{Success: false, Message: "Invalid request payload"})
	}

	if _, err := h.portfolioService.AddPosition(c.Request().Context(), &req); err != nil {
		return h.mutationError(c, err, "Failed to add position")
	}

	return c.JSON(http.StatusCreated, dto.ActionResponse{Success: true, Message: "Position added successfully"})
}

// UpdatePosition edits an existing position.
func (h *PortfolioHandler) UpdatePosition(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ActionResponse{Success: false, Message: "Invalid position ID"})
	}

	var req dto.UpdatePositionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ActionResponse{Success: false, Message: "Invalid request payload"})
	}

	if _, err := h.portfolioService.UpdatePosition(c.Request().Context(), id, &req); err != nil {
		return h.mutationError(c, err, "Failed to update position")
	}

	return c.JSON(http.StatusOK, dto.ActionResponse{Success: true, Message: "Position updated successfully"})
}

// DeletePosition removes a position.
func (h *PortfolioHandler) DeletePosition(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ActionResponse{Success: false, Message: "Invalid position ID"})
	}

	if err := h.portfolioService.DeletePosition(c.Request().Context(), id); err != nil {
		return h.mutationError(c, err, "Failed to delete position")
	}

	return c.JSON(http.StatusOK, dto.ActionResponse{Success: true, Message: "Position deleted successfully"})
}

// RefreshPrices clears the price cache so subsequent reads re-query the
// provider.
func (h *PortfolioHandler) RefreshPrices(c echo.Context) error {
	if err := h.portfolioService.RefreshPrices(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ActionResponse{Success: false, Message: "Failed to refresh prices"})
	}
	return c.JSON(http.StatusOK, dto.ActionResponse{Success: true, Message: "Prices refreshed successfully"})
}

// ExportCSV streams the valued portfolio as a CSV attachment.
func (h *PortfolioHandler) ExportCSV(c echo.Context) error {
	data, filename, err := h.portfolioService.ExportCSV(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to export portfolio", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ActionResponse{Success: false, Message: "Failed to export portfolio"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv", data)
}

// mutationError maps service errors onto status codes while keeping the
// original user-facing message shape.
func (h *PortfolioHandler) mutationError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrInvalidPosition):
		return c.JSON(http.StatusBadRequest, dto.ActionResponse{Success: false, Message: err.Error()})
	case errors.Is(err, repository.ErrPriceUnavailable):
		return c.JSON(http.StatusUnprocessableEntity, dto.ActionResponse{Success: false, Message: err.Error()})
	case errors.Is(err, repository.ErrPositionNotFound):
		return c.JSON(http.StatusNotFound, dto.ActionResponse{Success: false, Message: "Position not found"})
	default:
		h.logger.Error(fallback, logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ActionResponse{Success: false, Message: fallback})
	}
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
