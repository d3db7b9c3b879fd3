// Package app собирает бота из конфигурации: хранилище, сессии, Telegram, метрики.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"

	"github.com/ivanoskov/budget_bot/internal/bot"
	"github.com/ivanoskov/budget_bot/internal/charts"
	"github.com/ivanoskov/budget_bot/internal/config"
	"github.com/ivanoskov/budget_bot/internal/metrics"
	"github.com/ivanoskov/budget_bot/internal/model"
	"github.com/ivanoskov/budget_bot/internal/repository"
	"github.com/ivanoskov/budget_bot/internal/retry"
	"github.com/ivanoskov/budget_bot/internal/server"
	"github.com/ivanoskov/budget_bot/internal/service"
	"github.com/ivanoskov/budget_bot/internal/session"
	"github.com/ivanoskov/budget_bot/internal/telegram"
)

// App - собранный бот и его зависимости
type App struct {
	Config  *config.Config
	Bot     *bot.Bot
	Client  *telegram.Client
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	checks  []server.HealthCheck
	closers []func() error
}

// New подключается ко всем внешним сервисам с повторами по cfg.Retry.
// При ошибке уже открытые соединения закрываются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	if err := bot.CheckChoices(cfg.Options()); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &App{
		Config:  cfg,
		Metrics: metrics.New(),
		Logger:  logger,
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	expenses, incomes, err := a.openTables(ctx)
	if err != nil {
		return nil, err
	}

	ledger := service.NewLedger(expenses, incomes, service.DeletePolicy(cfg.Delete.Policy))
	err = retry.Do(ctx, logger, "income header", cfg.Retry, func(ctx context.Context) error {
		return ledger.EnsureHeader(ctx, model.FlowIncome)
	})
	if err != nil {
		return nil, err
	}

	sessions, err := a.openSessions(ctx)
	if err != nil {
		return nil, err
	}

	err = retry.Do(ctx, logger, "telegram", cfg.Retry, func(context.Context) error {
		client, err := telegram.NewClientWithEndpoint(cfg.Telegram.Token, cfg.Telegram.APIEndpoint, http.DefaultClient, cfg.Telegram.Debug, logger)
		if err != nil {
			var apiErr *tgbotapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
				return retry.Permanent(err)
			}
			return err
		}
		a.Client = client
		return nil
	})
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if len(cfg.AuthorizedUsers) == 0 {
		logger.Warn("authorized_users is empty, every message will be rejected")
	}

	settings := bot.Settings{
		Choices:   cfg.Options(),
		Validator: bot.NewValidator(cfg.Limits.MaxValue, cfg.Limits.MaxDescriptionLength),
	}
	a.Bot = bot.New(a.Client, sessions, ledger, bot.NewAllowList(cfg.AuthorizedUsers), settings,
		bot.WithCharts(charts.NewRenderer()),
		bot.WithMetrics(a.Metrics),
		bot.WithLogger(logger),
		bot.WithLocation(loc),
	)

	logger.Info("bot ready",
		"bot", a.Client.Username(),
		"store", cfg.Store.Backend,
		"sessions", cfg.Session.Backend,
		"delete_policy", cfg.Delete.Policy,
		"authorized_users", len(cfg.AuthorizedUsers))
	return a, nil
}

func (a *App) openTables(ctx context.Context) (repository.Table, repository.Table, error) {
	cfg := a.Config

	switch cfg.Store.Backend {
	case config.StoreSheets:
		srv, err := repository.NewSheetsService(ctx, cfg.Store.Sheets.CredentialsPath)
		if err != nil {
			return nil, nil, err
		}
		var expenses, incomes *repository.SheetsTable
		err = retry.Do(ctx, a.Logger, "google sheets", cfg.Retry, func(ctx context.Context) error {
			var err error
			if expenses, err = repository.OpenSheet(ctx, srv, cfg.Store.Sheets.SpreadsheetID, cfg.Store.Sheets.ExpenseSheet); err != nil {
				return err
			}
			incomes, err = repository.OpenSheet(ctx, srv, cfg.Store.Sheets.SpreadsheetID, cfg.Store.Sheets.IncomeSheet)
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		return expenses, incomes, nil

	case config.StoreSupabase:
		client, err := repository.NewSupabaseClient(cfg.Store.Supabase.URL, cfg.Store.Supabase.Key)
		if err != nil {
			return nil, nil, err
		}
		expenses := repository.NewSupabaseTable(client, cfg.Store.Supabase.ExpenseTable)
		incomes := repository.NewSupabaseTable(client, cfg.Store.Supabase.IncomeTable)
		err = retry.Do(ctx, a.Logger, "supabase", cfg.Retry, func(ctx context.Context) error {
			if err := expenses.Ping(ctx); err != nil {
				return err
			}
			return incomes.Ping(ctx)
		})
		if err != nil {
			return nil, nil, err
		}
		a.checks = append(a.checks, expenses.Ping)
		return expenses, incomes, nil

	case config.StoreMemory:
		a.Logger.Warn("using in-memory store, entries are lost on restart")
		return repository.NewMemoryTable(), repository.NewMemoryTable(), nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend: %q", cfg.Store.Backend)
	}
}

func (a *App) openSessions(ctx context.Context) (session.Store, error) {
	cfg := a.Config

	switch cfg.Session.Backend {
	case config.SessionMemory:
		return session.NewMemory(), nil

	case config.SessionRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.Redis.Addr,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
		})
		store := session.NewRedis(client,
			session.WithPrefix(cfg.Session.Redis.Prefix),
			session.WithTTL(cfg.Session.Redis.TTL),
		)
		a.closers = append(a.closers, store.Close)

		if err := retry.Do(ctx, a.Logger, "redis", cfg.Retry, store.Ping); err != nil {
			return nil, err
		}
		a.checks = append(a.checks, store.Ping)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown session backend: %q", cfg.Session.Backend)
	}
}

// Health проверяет хранилища, у которых есть дешёвая проверка
func (a *App) Health(ctx context.Context) error {
	for _, check := range a.checks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// HTTPHandler - маршруты webhook, метрик и проверки живости
func (a *App) HTTPHandler() http.Handler {
	return server.NewHandler(a.Bot, server.Options{
		WebhookPath:   a.Config.Telegram.WebhookPath,
		WebhookSecret: a.Config.Telegram.WebhookSecret,
		Metrics:       a.Metrics,
		Health:        a.Health,
		Logger:        a.Logger,
	})
}

// Close закрывает соединения в обратном порядке
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
