package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/ivanoskov/budget_bot/internal/app"
	"github.com/ivanoskov/budget_bot/internal/config"
	"github.com/ivanoskov/budget_bot/internal/logging"
	"github.com/ivanoskov/budget_bot/internal/server"
	"github.com/ivanoskov/budget_bot/internal/telegram"
)

// Request структура входящего запроса от API Gateway
type Request struct {
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Response структура ответа для API Gateway
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Экземпляр функции переиспользуется между вызовами, поэтому бот собирается один раз
var (
	initOnce sync.Once
	instance *app.App
	initErr  error
)

func getApp(ctx context.Context) (*app.App, error) {
	initOnce.Do(func() {
		cfg, err := config.LoadConfig(os.Getenv("BUDGETBOT_CONFIG"))
		if err != nil {
			initErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			initErr = fmt.Errorf("invalid config: %w", err)
			return
		}

		logger, err := logging.New(os.Stderr, cfg.Log.Level, "json")
		if err != nil {
			initErr = err
			return
		}
		if cfg.Session.Backend == config.SessionMemory {
			logger.Warn("in-memory sessions do not survive between function instances, use session.backend=redis")
		}
		instance, initErr = app.New(ctx, cfg, logger)
	})
	return instance, initErr
}

func Handler(ctx context.Context, request Request) (*Response, error) {
	a, err := getApp(ctx)
	if err != nil {
		slog.Error("failed to initialize bot", "error", err)
		return errorResponse(http.StatusInternalServerError, err)
	}

	if secret := a.Config.Telegram.WebhookSecret; secret != "" &&
		subtle.ConstantTimeCompare([]byte(header(request.Headers, server.SecretHeader)), []byte(secret)) != 1 {
		return errorResponse(http.StatusForbidden, errors.New("invalid webhook secret"))
	}

	update, err := telegram.ParseUpdate([]byte(request.Body))
	if err != nil {
		return errorResponse(http.StatusBadRequest, err)
	}

	if ev, ok := telegram.EventFromUpdate(update); ok {
		// Пользователь уже получил ответ об ошибке, повтор доставки не нужен
		if err := a.Bot.Handle(ctx, ev); err != nil {
			a.Logger.Error("error handling update", "update_id", update.UpdateID, "error", err)
		}
	}

	return &Response{
		StatusCode: http.StatusOK,
		Body:       "",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

// header ищет заголовок без учёта регистра: шлюзы часто приводят имена к нижнему
func header(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func errorResponse(status int, err error) (*Response, error) {
	return &Response{
		StatusCode: status,
		Body:       err.Error(),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func main() {
	// Точка входа для локального тестирования
}
