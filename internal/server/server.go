// Package server - HTTP-вход бота: webhook Telegram, метрики и проверка живости.
package server

import (
	"context"
	"crypto/subtle"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ivanoskov/budget_bot/internal/logging"
	"github.com/ivanoskov/budget_bot/internal/metrics"
	"github.com/ivanoskov/budget_bot/internal/telegram"
)

// Максимальный размер тела webhook-запроса
const maxUpdateSize = 1 << 20

// SecretHeader - заголовок с секретом, заданным при setWebhook
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// HealthCheck проверяет доступность зависимостей
type HealthCheck func(ctx context.Context) error

type Options struct {
	WebhookPath   string
	WebhookSecret string
	Metrics       *metrics.Metrics
	Health        HealthCheck
	Logger        *slog.Logger
}

type server struct {
	handler telegram.Handler
	secret  string
	health  HealthCheck
	logger  *slog.Logger
}

// NewHandler собирает маршруты POST /webhook, GET /metrics и GET /healthz
func NewHandler(h telegram.Handler, opts Options) http.Handler {
	s := &server{
		handler: h,
		secret:  opts.WebhookSecret,
		health:  opts.Health,
		logger:  opts.Logger,
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	path := opts.WebhookPath
	if path == "" {
		path = "/webhook"
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post(path, s.webhook)
	r.Get("/healthz", s.healthz)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	return r
}

func (s *server) webhook(w http.ResponseWriter, r *http.Request) {
	if s.secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretHeader)), []byte(s.secret)) != 1 {
		s.logger.Warn("webhook request with invalid secret", "remote", r.RemoteAddr)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateSize))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	update, err := telegram.ParseUpdate(body)
	if err != nil {
		s.logger.Warn("rejected webhook payload", "error", err)
		http.Error(w, "invalid update", http.StatusBadRequest)
		return
	}

	ev, ok := telegram.EventFromUpdate(update)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Ошибка обработки уже сообщена пользователю, повтор от Telegram не нужен
	if err := s.handler.Handle(r.Context(), ev); err != nil {
		s.logger.Error("error handling update", "update_id", update.UpdateID, "error", err)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			s.logger.Warn("health check failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}
