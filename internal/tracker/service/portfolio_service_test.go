package service

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"portfolio-tracker/internal/entity"
	"portfolio-tracker/internal/tracker/dto"
	"portfolio-tracker/internal/tracker/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePositionRepo is an in-memory PositionRepository for service tests.
type fakePositionRepo struct {
	positions []entity.Position
	nextID    uint
}

func (r *fakePositionRepo) FindAll(ctx context.Context) ([]entity.Position, error) {
	out := make([]entity.Position, len(r.positions))
	copy(out, r.positions)
	return out, nil
}

func (r *fakePositionRepo) FindByID(ctx context.Context, id uint) (*entity.Position, error) {
	for _, p := range r.positions {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, repository.ErrPositionNotFound
}

func (r *fakePositionRepo) Create(ctx context.Context, position *entity.Position) error {
	r.nextID++
	position.ID = r.nextID
	r.positions = append(r.positions, *position)
	return nil
}

func (r *fakePositionRepo) Update(ctx context.Context, position *entity.Position) error {
	for i, p := range r.positions {
		if p.ID == position.ID {
			r.positions[i] = *position
			return nil
		}
	}
	return repository.ErrPositionNotFound
}

func (r *fakePositionRepo) Delete(ctx context.Context, id uint) error {
	for i, p := range r.positions {
		if p.ID == id {
			r.positions = append(r.positions[:i], r.positions[i+1:]...)
			return nil
		}
	}
	return repository.ErrPositionNotFound
}

func newTestService(t *testing.T, prices map[string]float64) (PortfolioService, *fakePositionRepo, *fakePriceRepo) {
	t.Helper()
	positionRepo := &fakePositionRepo{}
	priceRepo := newFakePriceRepo(prices)
	cache := NewMemoryPriceCache(priceRepo, testLogger(t), 5*time.Minute)
	return NewPortfolioService(positionRepo, cache, testLogger(t)), positionRepo, priceRepo
}

func TestAddPosition(t *testing.T) {
	svc, positionRepo, _ := newTestService(t, map[string]float64{"AAPL": 180})

	position, err := svc.AddPosition(context.Background(), &dto.CreatePositionRequest{
		Description:   "Apple",
		Ticker:        "aapl",
		Quantity:      10,
		PurchasePrice: 150,
		Fees:          4.95,
	})
	require.NoError(t, err)

	assert.Equal(t, uint(1), position.ID)
	assert.Equal(t, "AAPL", position.Ticker, "ticker must be uppercased")
	assert.False(t, position.DateAdded.IsZero())
	assert.Len(t, positionRepo.positions, 1)
}

func TestAddPositionRejectsUnresolvableTicker(t *testing.T) {
	svc, positionRepo, _ := newTestService(t, map[string]float64{})

	_, err := svc.AddPosition(context.Background(), &dto.CreatePositionRequest{
		Ticker:        "BOGUS",
		Quantity:      1,
		PurchasePrice: 1,
	})
	assert.ErrorIs(t, err, repository.ErrPriceUnavailable)
	assert.Empty(t, positionRepo.positions, "store must remain unchanged")
}

func TestAddPositionValidation(t *testing.T) {
	tests := []struct {
		name string
		req  dto.CreatePositionRequest
	}{
		{"missing ticker", dto.CreatePositionRequest{Quantity: 1, PurchasePrice: 1}},
		{"zero quantity", dto.CreatePositionRequest{Ticker: "AAPL", Quantity: 0, PurchasePrice: 1}},
		{"negative quantity", dto.CreatePositionRequest{Ticker: "AAPL", Quantity: -1, PurchasePrice: 1}},
		{"zero purchase price", dto.CreatePositionRequest{Ticker: "AAPL", Quantity: 1, PurchasePrice: 0}},
		{"negative fees", dto.CreatePositionRequest{Ticker: "AAPL", Quantity: 1, PurchasePrice: 1, Fees: -1}},
	}

	svc, positionRepo, priceRepo := newTestService(t, map[string]float64{"AAPL": 180})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddPosition(context.Background(), &tt.req)
			assert.ErrorIs(t, err, ErrInvalidPosition)
		})
	}
	assert.Empty(t, positionRepo.positions)
	assert.Empty(t, priceRepo.calls, "validation failures must not reach the provider")
}

func TestUpdatePositionRevalidatesOnlyChangedTicker(t *testing.T) {
	svc, _, priceRepo := newTestService(t, map[string]float64{"AAPL": 180})

	_, err := svc.AddPosition(context.Background(), &dto.CreatePositionRequest{
		Ticker: "AAPL", Quantity: 10, PurchasePrice: 150,
	})
	require.NoError(t, err)
	require.Equal(t, 1, priceRepo.calls["AAPL"])

	// Same ticker: the cached price is good enough, no extra validation hit.
	updated, err := svc.UpdatePosition(context.Background(), 1, &dto.UpdatePositionRequest{
		Description: "more shares", Ticker: "AAPL", Quantity: 20, PurchasePrice: 150,
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, updated.Quantity)
	assert.Equal(t, 1, priceRepo.calls["AAPL"])

	// Changed ticker to something unresolvable: rejected, position untouched.
	_, err = svc.UpdatePosition(context.Background(), 1, &dto.UpdatePositionRequest{
		Ticker: "BOGUS", Quantity: 20, PurchasePrice: 150,
	})
	assert.ErrorIs(t, err, repository.ErrPriceUnavailable)

	portfolio, err := svc.GetPortfolio(context.Background())
	require.NoError(t, err)
	require.Len(t, portfolio.Portfolio, 1)
	assert.Equal(t, "AAPL", portfolio.Portfolio[0].Ticker)
}

func TestUpdatePositionNotFound(t *testing.T) {
	svc, _, _ := newTestService(t, map[string]float64{"AAPL": 180})

	_, err := svc.UpdatePosition(context.Background(), 42, &dto.UpdatePositionRequest{
		Ticker: "AAPL", Quantity: 1, PurchasePrice: 1,
	})
	assert.ErrorIs(t, err, repository.ErrPositionNotFound)
}

func TestDeletePositionNotFound(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	assert.ErrorIs(t, svc.DeletePosition(context.Background(), 7), repository.ErrPositionNotFound)
}

func TestGetPortfolioDegradesUnresolvablePrices(t *testing.T) {
	svc, positionRepo, _ := newTestService(t, map[string]float64{"AAPL": 200})

	// Seed the store directly so DELISTED bypasses add-time validation.
	positionRepo.positions = []entity.Position{
		{ID: 1, Ticker: "AAPL", Quantity: 10, PurchasePrice: 150, Fees: 5},
		{ID: 2, Ticker: "DELISTED", Quantity: 3, PurchasePrice: 30, Fees: 0},
	}

	portfolio, err := svc.GetPortfolio(context.Background())
	require.NoError(t, err)
	require.Len(t, portfolio.Portfolio, 2)

	priced := portfolio.Portfolio[0]
	require.NotNil(t, priced.CurrentPrice)
	assert.Equal(t, 200.0, *priced.CurrentPrice)
	require.NotNil(t, priced.PL)
	assert.InDelta(t, 2000-1505, *priced.PL, 1e-9)

	unpriced := portfolio.Portfolio[1]
	assert.Nil(t, unpriced.CurrentPrice)
	assert.Nil(t, unpriced.CurrentValue)
	assert.Nil(t, unpriced.PL)
	assert.Nil(t, unpriced.PLPercent)
	assert.InDelta(t, 90, unpriced.TotalCost, 1e-9)

	// Unpriced cost still counts toward the investment total.
	assert.InDelta(t, 1595, portfolio.Summary.TotalInvestment, 1e-9)
	assert.InDelta(t, 2000, portfolio.Summary.TotalCurrentValue, 1e-9)
	assert.InDelta(t, 405, portfolio.Summary.TotalPL, 1e-9)
}

func TestRefreshPricesForcesRequery(t *testing.T) {
	svc, _, priceRepo := newTestService(t, map[string]float64{"AAPL": 180})

	_, err := svc.AddPosition(context.Background(), &dto.CreatePositionRequest{
		Ticker: "AAPL", Quantity: 1, PurchasePrice: 1,
	})
	require.NoError(t, err)

	_, err = svc.GetPortfolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, priceRepo.calls["AAPL"])

	require.NoError(t, svc.RefreshPrices(context.Background()))

	_, err = svc.GetPortfolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, priceRepo.calls["AAPL"])
}

func TestExportCSV(t *testing.T) {
	svc, positionRepo, _ := newTestService(t, map[string]float64{"AAPL": 200})

	positionRepo.positions = []entity.Position{
		{ID: 1, Description: "Apple", Ticker: "AAPL", Quantity: 10, PurchasePrice: 150, Fees: 5, DateAdded: time.Now()},
		{ID: 2, Description: "Gone", Ticker: "DELISTED", Quantity: 3, PurchasePrice: 30, DateAdded: time.Now()},
	}

	data, filename, err := svc.ExportCSV(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "portfolio_export_"))
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus one row per position")

	assert.Equal(t, "Description", records[0][0])
	assert.Equal(t, "AAPL", records[1][1])

	// Unpriced cells degrade to N/A rather than failing the export.
	assert.Equal(t, "N/A", records[2][6])
	assert.Equal(t, "N/A", records[2][9])
}
