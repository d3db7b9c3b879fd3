package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/budget_bot/internal/bot"
	"github.com/ivanoskov/budget_bot/internal/logging"
)

type apiCall struct {
	method string
	form   map[string]string
}

// fakeBotAPI отвечает как Bot API и запоминает вызванные методы
type fakeBotAPI struct {
	mu    sync.Mutex
	calls []apiCall
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		_ = r.ParseMultipartForm(1 << 20)
	} else {
		_ = r.ParseForm()
	}
	form := make(map[string]string)
	for k := range r.Form {
		form[k] = r.Form.Get(k)
	}
	if r.MultipartForm != nil {
		for k := range r.MultipartForm.File {
			form[k] = "<file>"
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{method: method, form: form})
	f.mu.Unlock()

	var result any
	switch method {
	case "getMe":
		result = map[string]any{"id": 1, "is_bot": true, "first_name": "Budget", "username": "budget_bot"}
	default:
		result = map[string]any{"message_id": 1, "date": 0, "chat": map[string]any{"id": 42, "type": "private"}}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

func (f *fakeBotAPI) last() apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func newTestClient(t *testing.T) (*Client, *fakeBotAPI) {
	t.Helper()
	fake := &fakeBotAPI{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewClientWithEndpoint("test-token", srv.URL+"/bot%s/%s", srv.Client(), false, logging.NewNop())
	require.NoError(t, err)
	return c, fake
}

func TestNewClient_ChecksToken(t *testing.T) {
	c, fake := newTestClient(t)

	assert.Equal(t, "budget_bot", c.Username())
	assert.Equal(t, "getMe", fake.last().method)
}

func TestClient_SendText(t *testing.T) {
	c, fake := newTestClient(t)

	err := c.Send(context.Background(), 42, bot.Reply{
		Text:     "*Help*",
		Markdown: true,
		Keyboard: bot.Keyboard{{"RUB 🇷🇺", "RSD 🇷🇸"}, {"Income menu 💰"}},
	})
	require.NoError(t, err)

	call := fake.last()
	assert.Equal(t, "sendMessage", call.method)
	assert.Equal(t, "42", call.form["chat_id"])
	assert.Equal(t, "*Help*", call.form["text"])
	assert.Equal(t, tgbotapi.ModeMarkdown, call.form["parse_mode"])

	var markup tgbotapi.ReplyKeyboardMarkup
	require.NoError(t, json.Unmarshal([]byte(call.form["reply_markup"]), &markup))
	require.Len(t, markup.Keyboard, 2)
	assert.Equal(t, "RSD 🇷🇸", markup.Keyboard[0][1].Text)
	assert.True(t, markup.ResizeKeyboard)
}

func TestClient_SendRemovesKeyboard(t *testing.T) {
	c, fake := newTestClient(t)

	require.NoError(t, c.Send(context.Background(), 42, bot.Reply{Text: "amount?", RemoveKeyboard: true}))
	assert.Contains(t, fake.last().form["reply_markup"], `"remove_keyboard":true`)
	assert.Empty(t, fake.last().form["parse_mode"])
}

func TestClient_SendPhoto(t *testing.T) {
	c, fake := newTestClient(t)

	err := c.Send(context.Background(), 42, bot.Reply{Image: []byte("\x89PNG"), Caption: "📊 chart"})
	require.NoError(t, err)

	call := fake.last()
	assert.Equal(t, "sendPhoto", call.method)
	assert.Equal(t, "📊 chart", call.form["caption"])
	assert.Equal(t, "<file>", call.form["photo"])
}

func TestClient_SendCanceled(t *testing.T) {
	c, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Send(ctx, 42, bot.Reply{Text: "x"}), context.Canceled)
}

func TestEventFromUpdate(t *testing.T) {
	update, err := ParseUpdate([]byte(`{
		"update_id": 10,
		"message": {
			"message_id": 5,
			"date": 0,
			"text": "150.50",
			"from": {"id": 42, "is_bot": false, "first_name": "Alice", "username": "alice"},
			"chat": {"id": 4242, "type": "private"}
		}
	}`))
	require.NoError(t, err)

	ev, ok := EventFromUpdate(update)
	require.True(t, ok)
	assert.Equal(t, bot.Event{UserID: 42, ChatID: 4242, Username: "alice", FirstName: "Alice", Text: "150.50"}, ev)

	_, ok = EventFromUpdate(tgbotapi.Update{UpdateID: 11})
	assert.False(t, ok)

	_, err = ParseUpdate([]byte("{"))
	assert.Error(t, err)
}
