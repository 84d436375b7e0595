package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"portfolio-tracker/internal/entity"
	"portfolio-tracker/internal/tracker/dto"
	"portfolio-tracker/internal/tracker/repository"
	"portfolio-tracker/pkg/logger"
)

// ErrInvalidPosition is returned when a position request fails validation.
var ErrInvalidPosition = errors.New("invalid position")

// PortfolioService defines the interface for managing the portfolio.
type PortfolioService interface {
	GetPortfolio(ctx context.Context) (*dto.PortfolioResponse, error)
	AddPosition(ctx context.Context, req *dto.CreatePositionRequest) (*entity.Position, error)
	UpdatePosition(ctx context.Context, id uint, req *dto.UpdatePositionRequest) (*entity.Position, error)
	DeletePosition(ctx context.Context, id uint) error
	RefreshPrices(ctx context.Context) error
	ExportCSV(ctx context.Context) ([]byte, string, error)
}

// NewPortfolioService creates a new portfolio service.
func NewPortfolioService(positionRepo repository.PositionRepository, priceCache PriceCache, log *logger.Logger) PortfolioService {
	return &portfolioService{
		positionRepo: positionRepo,
		priceCache:   priceCache,
		logger:       log,
	}
}

type portfolioService struct {
	positionRepo repository.PositionRepository
	priceCache   PriceCache
	logger       *logger.Logger
}

// GetPortfolio values every position at the current price and aggregates the
// totals. Positions whose price cannot be resolved are returned with nil
// price fields instead of failing the whole portfolio.
func (s *portfolioService) GetPortfolio(ctx context.Context) (*dto.PortfolioResponse, error) {
	positions, err := s.positionRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	valuations := make([]dto.PositionValuation, 0, len(positions))
	var acc summaryAccumulator
	for _, position := range positions {
		var currentPrice *float64
		price, err := s.priceCache.GetPrice(ctx, position.Ticker)
		if err != nil {
			s.logger.WarnContext(ctx, "No price for ticker, excluding from current value",
				logger.StringField("ticker", position.Ticker), logger.ErrorField(err))
		} else {
			currentPrice = &price
		}

		valuation := ComputeValuation(position.Quantity, position.PurchasePrice, position.Fees, currentPrice)
		acc.add(valuation)

		valuations = append(valuations, dto.PositionValuation{
			ID:            position.ID,
			Description:   position.Description,
			Ticker:        position.Ticker,
			Quantity:      position.Quantity,
			PurchasePrice: position.PurchasePrice,
			TotalCost:     valuation.TotalCost,
			Fees:          position.Fees,
			CurrentPrice:  currentPrice,
			CurrentValue:  valuation.CurrentValue,
			PL:            valuation.PL,
			PLPercent:     valuation.PLPercent,
			DateAdded:     position.DateAdded,
		})
	}

	investment, currentValue, pl, plPercent := acc.totals()
	return &dto.PortfolioResponse{
		Success:   true,
		Portfolio: valuations,
		Summary: dto.PortfolioSummary{
			TotalInvestment:   investment,
			TotalCurrentValue: currentValue,
			TotalPL:           pl,
			TotalPLPercent:    plPercent,
		},
	}, nil
}

// AddPosition validates the request, verifies the ticker resolves to a price,
// and stores the new position. An unresolvable ticker rejects the request and
// leaves the store unchanged.
func (s *portfolioService) AddPosition(ctx context.Context, req *dto.CreatePositionRequest) (*entity.Position, error) {
	ticker, err := validatePositionFields(req.Ticker, req.Quantity, req.PurchasePrice, req.Fees)
	if err != nil {
		return nil, err
	}

	if _, err := s.priceCache.GetPrice(ctx, ticker); err != nil {
		s.logger.WarnContext(ctx, "Rejecting position with unresolvable ticker",
			logger.StringField("ticker", ticker), logger.ErrorField(err))
		return nil, fmt.Errorf("could not fetch data for ticker %q: %w", ticker, err)
	}

	position := &entity.Position{
		Description:   req.Description,
		Ticker:        ticker,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		Fees:          req.Fees,
		DateAdded:     time.Now(),
	}
	if err := s.positionRepo.Create(ctx, position); err != nil {
		s.logger.Error("Failed to create position", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return nil, err
	}

	s.logger.Info("Position added", logger.Field("position_id", position.ID), logger.StringField("ticker", ticker))
	return position, nil
}

// UpdatePosition edits an existing position. The ticker is re-validated
// against the provider only when it changed.
func (s *portfolioService) UpdatePosition(ctx context.Context, id uint, req *dto.UpdatePositionRequest) (*entity.Position, error) {
	ticker, err := validatePositionFields(req.Ticker, req.Quantity, req.PurchasePrice, req.Fees)
	if err != nil {
		return nil, err
	}

	position, err := s.positionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ticker != position.Ticker {
		if _, err := s.priceCache.GetPrice(ctx, ticker); err != nil {
			s.logger.WarnContext(ctx, "Rejecting ticker change to unresolvable ticker",
				logger.StringField("ticker", ticker), logger.ErrorField(err))
			return nil, fmt.Errorf("could not fetch data for ticker %q: %w", ticker, err)
		}
	}

	position.Description = req.Description
	position.Ticker = ticker
	position.Quantity = req.Quantity
	position.PurchasePrice = req.PurchasePrice
	position.Fees = req.Fees

	if err := s.positionRepo.Update(ctx, position); err != nil {
		s.logger.Error("Failed to update position", logger.ErrorField(err), logger.Field("position_id", id))
		return nil, err
	}

	s.logger.Info("Position updated", logger.Field("position_id", id), logger.StringField("ticker", ticker))
	return position, nil
}

// DeletePosition removes a position by its ID.
func (s *portfolioService) DeletePosition(ctx context.Context, id uint) error {
	if err := s.positionRepo.Delete(ctx, id); err != nil {
		if !errors.Is(err, repository.ErrPositionNotFound) {
			s.logger.Error("Failed to delete position", logger.ErrorField(err), logger.Field("position_id", id))
		}
		return err
	}
	s.logger.Info("Position deleted", logger.Field("position_id", id))
	return nil
}

// RefreshPrices clears the price cache so the next read per ticker hits the
// provider.
func (s *portfolioService) RefreshPrices(ctx context.Context) error {
	if err := s.priceCache.Refresh(ctx); err != nil {
		s.logger.Error("Failed to refresh price cache", logger.ErrorField(err))
		return err
	}
	s.logger.Info("Price cache cleared")
	return nil
}

// ExportCSV renders the valued portfolio as CSV: one header row plus one row
// per position, with N/A cells where no price was available.
func (s *portfolioService) ExportCSV(ctx context.Context) ([]byte, string, error) {
	portfolio, err := s.GetPortfolio(ctx)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"Description", "Ticker", "Quantity", "Purchase Price", "Total Cost",
		"Fees", "Current Price", "Current Value", "P&L", "P&L %", "Date Added",
	}
	if err := writer.Write(header); err != nil {
		return nil, "", err
	}

	for _, p := range portfolio.Portfolio {
		record := []string{
			p.Description,
			p.Ticker,
			formatFloat(p.Quantity),
			formatFloat(p.PurchasePrice),
			formatFloat(p.TotalCost),
			formatFloat(p.Fees),
			formatOptionalFloat(p.CurrentPrice),
			formatOptionalFloat(p.CurrentValue),
			formatOptionalFloat(p.PL),
			formatOptionalPercent(p.PLPercent),
			p.DateAdded.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("portfolio_export_%s.csv", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func validatePositionFields(ticker string, quantity, purchasePrice, fees float64) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	switch {
	case ticker == "":
		return "", fmt.Errorf("%w: ticker is required", ErrInvalidPosition)
	case quantity <= 0:
		return "", fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidPosition)
	case purchasePrice <= 0:
		return "", fmt.Errorf("%w: purchase price must be greater than zero", ErrInvalidPosition)
	case fees < 0:
		return "", fmt.Errorf("%w: fees cannot be negative", ErrInvalidPosition)
	}
	return ticker, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return formatFloat(*v)
}

func formatOptionalPercent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *v)
}
