// Package telegram связывает бота с Telegram Bot API: отправка ответов, long polling и разбор webhook.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/budget_bot/internal/bot"
	"github.com/ivanoskov/budget_bot/internal/logging"
)

// Handler обрабатывает входящие сообщения
type Handler interface {
	Handle(ctx context.Context, ev bot.Event) error
}

// Client отправляет ответы бота и получает обновления
type Client struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

// NewClient подключается к Telegram и проверяет токен запросом getMe
func NewClient(token string, debug bool, logger *slog.Logger) (*Client, error) {
	return NewClientWithEndpoint(token, tgbotapi.APIEndpoint, http.DefaultClient, debug, logger)
}

// NewClientWithEndpoint позволяет указать адрес Bot API, например локальный сервер
func NewClientWithEndpoint(token, endpoint string, httpClient *http.Client, debug bool, logger *slog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	api.Debug = debug

	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{api: api, logger: logger}, nil
}

// Username - имя бота, полученное при подключении
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// Send отправляет текст или картинку. Клавиатура прикрепляется к сообщению.
func (c *Client) Send(ctx context.Context, chatID int64, r bot.Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Send(buildMessage(chatID, r)); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}

func buildMessage(chatID int64, r bot.Reply) tgbotapi.Chattable {
	markup := replyMarkup(r)

	if len(r.Image) > 0 {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "chart.png", Bytes: r.Image})
		photo.Caption = r.Caption
		if markup != nil {
			photo.ReplyMarkup = markup
		}
		return photo
	}

	msg := tgbotapi.NewMessage(chatID, r.Text)
	if r.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return msg
}

func replyMarkup(r bot.Reply) any {
	if r.RemoveKeyboard {
		return tgbotapi.NewRemoveKeyboard(false)
	}
	if len(r.Keyboard) == 0 {
		return nil
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(r.Keyboard))
	for _, labels := range r.Keyboard {
		row := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}

// EventFromUpdate достаёт текстовое сообщение из обновления.
// Обновления без текста (стикеры, правки, callback) пропускаются.
func EventFromUpdate(u tgbotapi.Update) (bot.Event, bool) {
	m := u.Message
	if m == nil || m.From == nil || m.Chat == nil || m.Text == "" {
		return bot.Event{}, false
	}
	return bot.Event{
		UserID:    m.From.ID,
		ChatID:    m.Chat.ID,
		Username:  m.From.UserName,
		FirstName: m.From.FirstName,
		Text:      m.Text,
	}, true
}

// ParseUpdate разбирает тело webhook-запроса
func ParseUpdate(body []byte) (tgbotapi.Update, error) {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return tgbotapi.Update{}, fmt.Errorf("invalid update: %w", err)
	}
	return update, nil
}

// Poll получает обновления long polling до отмены ctx.
// Сообщения обрабатываются по очереди, ошибки обработки только логируются.
func (c *Client) Poll(ctx context.Context, timeout int, h Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout

	updates := c.api.GetUpdatesChan(u)
	defer c.api.StopReceivingUpdates()

	c.logger.Info("polling for updates", "bot", c.Username())
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			ev, ok := EventFromUpdate(update)
			if !ok {
				continue
			}
			if err := h.Handle(ctx, ev); err != nil {
				c.logger.Error("error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}
