// Package bot - диалог ввода расходов и доходов: состояние пользователя, проверка ввода, запись в таблицы.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/ivanoskov/budget_bot/internal/logging"
	"github.com/ivanoskov/budget_bot/internal/metrics"
	"github.com/ivanoskov/budget_bot/internal/model"
	"github.com/ivanoskov/budget_bot/internal/service"
	"github.com/ivanoskov/budget_bot/internal/session"
)

// Event - входящее текстовое сообщение
type Event struct {
	ID        string
	UserID    int64
	ChatID    int64
	Username  string
	FirstName string
	Text      string
}

// UserLabel - подпись пользователя в строке таблицы
func (e Event) UserLabel() string {
	switch {
	case e.Username != "":
		return e.Username
	case e.FirstName != "":
		return e.FirstName
	default:
		return "No username"
	}
}

// Keyboard - ряды кнопок быстрого ответа
type Keyboard [][]string

// Reply - исходящее сообщение. Если задан Image, отправляется фото с подписью Caption.
type Reply struct {
	Text           string
	Keyboard       Keyboard
	RemoveKeyboard bool
	Markdown       bool
	Image          []byte
	Caption        string
}

// Sender доставляет ответы пользователю
type Sender interface {
	Send(ctx context.Context, chatID int64, r Reply) error
}

// Authorizer решает, может ли пользователь работать с ботом
type Authorizer interface {
	IsAuthorized(userID int64) bool
}

// AllowList - статический список разрешённых пользователей
type AllowList map[int64]struct{}

func NewAllowList(ids []int64) AllowList {
	l := make(AllowList, len(ids))
	for _, id := range ids {
		l[id] = struct{}{}
	}
	return l
}

func (l AllowList) IsAuthorized(userID int64) bool {
	_, ok := l[userID]
	return ok
}

// ChartRenderer рисует графики аналитики
type ChartRenderer interface {
	CategoryPie(report service.MonthReport) ([]byte, error)
	MonthlyLine(title string, points []service.MonthTotal) ([]byte, error)
}

// Settings - наборы кнопок и ограничения ввода
type Settings struct {
	Choices   model.Options
	Validator Validator
}

type Bot struct {
	sender    Sender
	sessions  session.Store
	locks     *session.Locks
	ledger    *service.Ledger
	auth      Authorizer
	charts    ChartRenderer
	choices   model.Options
	validator Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
	location  *time.Location
}

type Option func(*Bot)

func WithCharts(r ChartRenderer) Option {
	return func(b *Bot) { b.charts = r }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bot) { b.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) { b.logger = l }
}

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(b *Bot) { b.now = now }
}

// WithLocation задаёт часовой пояс дат записей
func WithLocation(loc *time.Location) Option {
	return func(b *Bot) {
		if loc != nil {
			b.location = loc
		}
	}
}

func New(sender Sender, sessions session.Store, ledger *service.Ledger, auth Authorizer, settings Settings, opts ...Option) *Bot {
	b := &Bot{
		sender:    sender,
		sessions:  sessions,
		locks:     session.NewLocks(),
		ledger:    ledger,
		auth:      auth,
		choices:   settings.Choices,
		validator: settings.Validator,
		logger:    logging.NewNop(),
		now:       time.Now,
		location:  time.Local,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// turn - обработка одного сообщения: сессия, накопленные ответы и признак изменения
type turn struct {
	ev      Event
	trigger Trigger
	code    string
	session *model.Session
	found   bool
	dirty   bool
	replies []Reply
	log     *slog.Logger
}

func (t *turn) say(r Reply) {
	t.replies = append(t.replies, r)
}

// replace заменяет сессию целиком
func (t *turn) replace(s *model.Session) {
	t.session = s
	t.dirty = true
}

func (t *turn) touch() {
	t.dirty = true
}

func (b *Bot) today() time.Time {
	return b.now().In(b.location)
}

// Handle обрабатывает одно сообщение. Сообщения одного пользователя обрабатываются последовательно.
func (b *Bot) Handle(ctx context.Context, ev Event) (err error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	trigger, code := Classify(ev.Text, b.choices.Currencies)
	log := b.logger.With("event_id", ev.ID, "user_id", ev.UserID, "trigger", trigger.String())
	b.metrics.Event(trigger.String())

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while handling message", "panic", r, "stack", string(debug.Stack()))
			_ = b.sender.Send(ctx, ev.ChatID, Reply{Text: msgSomethingWrong})
			err = fmt.Errorf("panic while handling message: %v", r)
		}
	}()

	if !b.auth.IsAuthorized(ev.UserID) {
		log.Warn("unauthorized access attempt")
		b.metrics.Unauthorized()
		return b.sender.Send(ctx, ev.ChatID, Reply{Text: msgUnauthorized})
	}

	return b.locks.WithLock(ctx, ev.UserID, func(ctx context.Context) error {
		return b.process(ctx, &turn{ev: ev, trigger: trigger, code: code, log: log})
	})
}

func (b *Bot) process(ctx context.Context, t *turn) error {
	s, found, err := b.sessions.Get(ctx, t.ev.UserID)
	if err != nil {
		b.metrics.StoreError("session_get")
		if !t.trigger.replacesSession() {
			t.log.Error("failed to load session", "error", err)
			_ = b.sender.Send(ctx, t.ev.ChatID, Reply{Text: msgSomethingWrong})
			return fmt.Errorf("load session: %w", err)
		}
		// Испорченная сессия перезапишется новой
		t.log.Warn("failed to load session, starting over", "error", err)
		s, found = nil, false
	}
	if !found {
		s = model.NewSession(t.ev.UserID, model.FlowExpense, model.StateIdle)
	}
	t.session, t.found = s, found
	t.log = t.log.With("state", string(s.State))

	b.dispatch(ctx, t)

	var errs []error
	if t.dirty {
		t.session.UpdatedAt = b.now()
		if err := b.sessions.Set(ctx, t.ev.UserID, t.session); err != nil {
			b.metrics.StoreError("session_set")
			t.log.Error("failed to save session", "error", err)
			errs = append(errs, fmt.Errorf("save session: %w", err))
			// Ответы описывают состояние, которое не сохранилось
			t.replies = []Reply{{Text: msgSomethingWrong}}
		}
	}

	for _, r := range t.replies {
		if err := b.sender.Send(ctx, t.ev.ChatID, r); err != nil {
			t.log.Error("failed to send reply", "error", err)
			errs = append(errs, fmt.Errorf("send reply: %w", err))
		}
	}
	return errors.Join(errs...)
}
