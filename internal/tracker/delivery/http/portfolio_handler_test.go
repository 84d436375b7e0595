package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portfolio-tracker/internal/entity"
	"portfolio-tracker/internal/tracker/dto"
	"portfolio-tracker/internal/tracker/repository"
	"portfolio-tracker/internal/tracker/service"
	"portfolio-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePortfolioService returns canned results for handler tests.
type fakePortfolioService struct {
	portfolio *dto.PortfolioResponse
	addErr    error
	updateErr error
	deleteErr error
}

func (s *fakePortfolioService) GetPortfolio(ctx context.Context) (*dto.PortfolioResponse, error) {
	return s.portfolio, nil
}

func (s *fakePortfolioService) AddPosition(ctx context.Context, req *dto.CreatePositionRequest) (*entity.Position, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	return &entity.Position{ID: 1, Ticker: strings.ToUpper(req.Ticker)}, nil
}

func (s *fakePortfolioService) UpdatePosition(ctx context.Context, id uint, req *dto.UpdatePositionRequest) (*entity.Position, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &entity.Position{ID: id, Ticker: strings.ToUpper(req.Ticker)}, nil
}

func (s *fakePortfolioService) DeletePosition(ctx context.Context, id uint) error {
	return s.deleteErr
}

func (s *fakePortfolioService) RefreshPrices(ctx context.Context) error {
	return nil
}

func (s *fakePortfolioService) ExportCSV(ctx context.Context) ([]byte, string, error) {
	return []byte("Description,Ticker\n"), "portfolio_export_test.csv", nil
}

func newTestServer(t *testing.T, svc service.PortfolioService) *echo.Echo {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	e := echo.New()
	handler := NewPortfolioHandler(svc, log)
	handler.RegisterRoutes(e.Group("/api"))
	return e
}

func TestGetPortfolio(t *testing.T) {
	price := 200.0
	svc := &fakePortfolioService{
		portfolio: &dto.PortfolioResponse{
			Success: true,
			Portfolio: []dto.PositionValuation{
				{ID: 1, Ticker: "AAPL", Quantity: 10, PurchasePrice: 150, TotalCost: 1500, CurrentPrice: &price},
			},
			Summary: dto.PortfolioSummary{TotalInvestment: 1500, TotalCurrentValue: 2000, TotalPL: 500},
		},
	}
	e := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.PortfolioResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Portfolio, 1)
	assert.Equal(t, "AAPL", resp.Portfolio[0].Ticker)
	assert.Equal(t, 500.0, resp.Summary.TotalPL)
}

func TestAddPositionStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		addErr     error
		wantStatus int
	}{
		{
			name:       "created",
			body:       `{"description":"Apple","ticker":"AAPL","quantity":10,"purchase_price":150,"fees":5}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed payload",
			body:       `{"quantity":"ten"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "validation failure",
			body:       `{"ticker":"AAPL"}`,
			addErr:     service.ErrInvalidPosition,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unresolvable ticker",
			body:       `{"ticker":"BOGUS","quantity":1,"purchase_price":1}`,
			addErr:     repository.ErrPriceUnavailable,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(t, &fakePortfolioService{addErr: tt.addErr})

			req := httptest.NewRequest(http.MethodPost, "/api/position", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp dto.ActionResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus < 300, resp.Success)
		})
	}
}

func TestUpdatePositionInvalidID(t *testing.T) {
	e := newTestServer(t, &fakePortfolioService{})

	req := httptest.NewRequest(http.MethodPut, "/api/position/abc", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeletePositionNotFound(t *testing.T) {
	e := newTestServer(t, &fakePortfolioService{deleteErr: repository.ErrPositionNotFound})

	req := httptest.NewRequest(http.MethodDelete, "/api/position/42", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshPrices(t *testing.T) {
	e := newTestServer(t, &fakePortfolioService{})

	req := httptest.NewRequest(http.MethodPost, "/api/refresh-prices", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ActionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestExportCSV(t *testing.T) {
	e := newTestServer(t, &fakePortfolioService{})

	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "portfolio_export_test.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Description,Ticker"))
}
