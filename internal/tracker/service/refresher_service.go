package service

import (
	"context"

	"portfolio-tracker/internal/tracker/config"
	"portfolio-tracker/pkg/logger"
	"portfolio-tracker/pkg/telegram"

	"github.com/robfig/cron/v3"
)

// RefresherService periodically clears the price cache and re-warms it by
// revaluing the portfolio, so interactive reads mostly hit fresh cache
// entries. Optionally pushes the resulting summary to Telegram.
type RefresherService interface {
	Start(ctx context.Context) error
	Stop()
}

// NewRefresherService creates a new scheduled price refresher.
func NewRefresherService(cfg *config.Config, portfolioSvc PortfolioService, notifier telegram.Notifier, log *logger.Logger) RefresherService {
	return &refresherService{
		cfg:          cfg,
		portfolioSvc: portfolioSvc,
		notifier:     notifier,
		logger:       log,
		cron:         cron.New(),
	}
}

type refresherService struct {
	cfg          *config.Config
	portfolioSvc PortfolioService
	notifier     telegram.Notifier
	logger       *logger.Logger
	cron         *cron.Cron
}

// Start registers the refresh schedule and starts the cron runner.
func (s *refresherService) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.Refresher.Schedule, func() {
		s.run(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Price refresher started", logger.StringField("schedule", s.cfg.Refresher.Schedule))
	return nil
}

// Stop stops the cron runner, waiting for a running refresh to finish.
func (s *refresherService) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("Price refresher stopped")
}

func (s *refresherService) run(ctx context.Context) {
	if err := s.portfolioSvc.RefreshPrices(ctx); err != nil {
		return
	}

	portfolio, err := s.portfolioSvc.GetPortfolio(ctx)
	if err != nil {
		s.logger.Error("Failed to revalue portfolio after refresh", logger.ErrorField(err))
		return
	}

	s.logger.Info("Portfolio revalued",
		logger.IntField("positions", len(portfolio.Portfolio)),
		logger.Float64Field("total_current_value", portfolio.Summary.TotalCurrentValue),
		logger.Float64Field("total_pl", portfolio.Summary.TotalPL))

	if s.cfg.Refresher.NotifySummary && s.notifier != nil {
		message := telegram.FormatPortfolioSummary(portfolio)
		if err := s.notifier.SendMessage(message); err != nil {
			s.logger.Error("Failed to send portfolio summary notification", logger.ErrorField(err))
		}
	}
}
