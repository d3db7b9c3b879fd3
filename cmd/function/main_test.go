package main

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/budget_bot/internal/server"
)

func TestErrorResponse(t *testing.T) {
	resp, err := errorResponse(http.StatusForbidden, errors.New("invalid webhook secret"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "invalid webhook secret", resp.Body)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func TestHeader_CaseInsensitive(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "canonical", headers: map[string]string{"X-Telegram-Bot-Api-Secret-Token": "s3cret"}, want: "s3cret"},
		{name: "lowercased by gateway", headers: map[string]string{"x-telegram-bot-api-secret-token": "s3cret"}, want: "s3cret"},
		{name: "missing", headers: map[string]string{"content-type": "application/json"}},
		{name: "nil headers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, header(tt.headers, server.SecretHeader))
		})
	}
}

func TestHandler_InitFailure(t *testing.T) {
	t.Setenv("BUDGETBOT_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	resp, err := Handler(context.Background(), Request{Body: `{"update_id": 1}`})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, resp.Body, "reading config")
}
