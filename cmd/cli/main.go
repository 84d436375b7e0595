package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"

	"portfolio-tracker/internal/tracker/config"
	"portfolio-tracker/internal/tracker/dto"
	"portfolio-tracker/internal/tracker/repository"
	"portfolio-tracker/internal/tracker/service"
	"portfolio-tracker/pkg/logger"
	"portfolio-tracker/pkg/postgres"
	"portfolio-tracker/pkg/utils"
)

// app bundles everything a command needs.
type app struct {
	cfg          *config.Config
	logger       *logger.Logger
	portfolioSvc service.PortfolioService
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	var positionRepo repository.PositionRepository
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := postgres.NewDB(postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			TimeZone:        cfg.Database.TimeZone,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogLevel:        cfg.Database.LogLevel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		positionRepo = repository.NewPostgresPositionRepository(db.DB)
	default:
		positionRepo, err = repository.NewFilePositionRepository(cfg.Storage.File, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize position store: %w", err)
		}
	}

	var priceRepo repository.PriceRepository
	if cfg.Provider.Driver == "alpaca" {
		priceRepo = repository.NewAlpacaRepository(appLogger)
	} else {
		priceRepo = repository.NewYahooFinanceRepository(cfg, appLogger)
	}

	priceCache := service.NewMemoryPriceCache(priceRepo, appLogger, cfg.PriceCache.TTL)

	return &app{
		cfg:          cfg,
		logger:       appLogger,
		portfolioSvc: service.NewPortfolioService(positionRepo, priceCache, appLogger),
	}, nil
}

func (a *app) printPortfolio(portfolio *dto.PortfolioResponse) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTICKER\tDESCRIPTION\tQTY\tBUY\tCOST\tPRICE\tVALUE\tP/L\tP/L %")
	for _, p := range portfolio.Portfolio {
		fmt.Fprintf(w, "%d\t%s\t%s\t%g\t%.2f\t%.2f\t%s\t%s\t%s\t%s\n",
			p.ID, p.Ticker, p.Description, p.Quantity, p.PurchasePrice, p.TotalCost,
			fmtCell(p.CurrentPrice, "%.2f"),
			fmtCell(p.CurrentValue, "%.2f"),
			fmtCell(p.PL, "%+.2f"),
			fmtCell(p.PLPercent, "%+.2f%%"))
	}
	w.Flush()

	s := portfolio.Summary
	fmt.Printf("\nInvested: %.2f   Current: %.2f   P/L: %+.2f (%+.2f%%)\n",
		s.TotalInvestment, s.TotalCurrentValue, s.TotalPL, s.TotalPLPercent)
}

func fmtCell(v *float64, format string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *v)
}

func runList(a *app) error {
	portfolio, err := a.portfolioSvc.GetPortfolio(context.Background())
	if err != nil {
		return err
	}
	a.printPortfolio(portfolio)
	return nil
}

func runAdd(a *app, description, ticker string, quantity, price, fees float64) error {
	position, err := a.portfolioSvc.AddPosition(context.Background(), &dto.CreatePositionRequest{
		Description:   description,
		Ticker:        ticker,
		Quantity:      quantity,
		PurchasePrice: price,
		Fees:          fees,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added position %d (%s)\n", position.ID, position.Ticker)
	return nil
}

func runEdit(a *app, id uint, description, ticker string, quantity, price, fees float64) error {
	position, err := a.portfolioSvc.UpdatePosition(context.Background(), id, &dto.UpdatePositionRequest{
		Description:   description,
		Ticker:        ticker,
		Quantity:      quantity,
		PurchasePrice: price,
		Fees:          fees,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Updated position %d (%s)\n", position.ID, position.Ticker)
	return nil
}

func runDelete(a *app, id uint) error {
	if err := a.portfolioSvc.DeletePosition(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("Deleted position %d\n", id)
	return nil
}

// runRefresh clears the cache and revalues the whole portfolio off the main
// goroutine, reporting the result back over a channel.
func runRefresh(a *app) error {
	ctx := context.Background()
	if err := a.portfolioSvc.RefreshPrices(ctx); err != nil {
		return err
	}

	type result struct {
		portfolio *dto.PortfolioResponse
		err       error
	}
	results := make(chan result, 1)

	fmt.Println("Refreshing prices...")
	utils.GoSafe(func() {
		portfolio, err := a.portfolioSvc.GetPortfolio(ctx)
		results <- result{portfolio: portfolio, err: err}
	})

	res := <-results
	if res.err != nil {
		return res.err
	}
	a.printPortfolio(res.portfolio)
	return nil
}

func runExport(a *app, output string) error {
	data, filename, err := a.portfolioSvc.ExportCSV(context.Background())
	if err != nil {
		return err
	}
	if output == "" {
		output = filename
	}
	if output == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return err
	}
	fmt.Printf("Exported portfolio to %s\n", output)
	return nil
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid position ID %q", arg)
	}
	return uint(id), nil
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.SetFlags(0)
		log.Fatalf("Error: %v", err)
	}
}
