package telegram_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recomendachef/telegram"
)

type mockDoer struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func httpResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestClient_GetUpdates(t *testing.T) {
	var captured *http.Request
	var capturedBody []byte
	client := telegram.NewClient("TOKEN", &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		captured = req
		capturedBody, _ = io.ReadAll(req.Body)
		return httpResponse(http.StatusOK, `{"ok":true,"result":[
			{"update_id":100,"message":{"message_id":1,"text":"hola","chat":{"id":7}}},
			{"update_id":101}
		]}`), nil
	}})

	updates, err := client.GetUpdates(context.Background(), 100, 30)
	require.NoError(t, err)
	require.Len(t, updates, 2)

	assert.Equal(t, int64(100), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, "hola", updates[0].Message.Text)
	assert.Equal(t, int64(7), updates[0].Message.Chat.ID)
	assert.Nil(t, updates[1].Message)

	require.NotNil(t, captured)
	assert.Equal(t, "https://api.telegram.org/botTOKEN/getUpdates", captured.URL.String())

	var payload map[string]any
	require.NoError(t, json.Unmarshal(capturedBody, &payload))
	assert.Equal(t, 100.0, payload["offset"])
	assert.Equal(t, 30.0, payload["timeout"])
}

func TestClient_SendMessage(t *testing.T) {
	var captured *http.Request
	var capturedBody []byte
	client := telegram.NewClient("TOKEN", &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		captured = req
		capturedBody, _ = io.ReadAll(req.Body)
		return httpResponse(http.StatusOK, `{"ok":true,"result":{"message_id":10}}`), nil
	}})

	err := client.SendMessage(context.Background(), 7, "Hola!")
	require.NoError(t, err)

	assert.Equal(t, "https://api.telegram.org/botTOKEN/sendMessage", captured.URL.String())
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(capturedBody, &payload))
	assert.Equal(t, 7.0, payload["chat_id"])
	assert.Equal(t, "Hola!", payload["text"])
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doFunc  func(req *http.Request) (*http.Response, error)
		wantErr string
	}{
		{
			name: "transport error",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			wantErr: "connection refused",
		},
		{
			name: "non-200 status",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return httpResponse(http.StatusUnauthorized, `{"ok":false,"description":"Unauthorized"}`), nil
			},
			wantErr: "sendMessage failed",
		},
		{
			name: "api rejection",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return httpResponse(http.StatusOK, `{"ok":false,"description":"Bad Request: chat not found"}`), nil
			},
			wantErr: "chat not found",
		},
		{
			name: "malformed envelope",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return httpResponse(http.StatusOK, "not json"), nil
			},
			wantErr: "failed to decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := telegram.NewClient("TOKEN", &mockDoer{doFunc: tt.doFunc})
			err := client.SendMessage(context.Background(), 7, "x")
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestClient_GetUpdates_MalformedResult(t *testing.T) {
	client := telegram.NewClient("TOKEN", &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		return httpResponse(http.StatusOK, `{"ok":true,"result":{"not":"a list"}}`), nil
	}})

	_, err := client.GetUpdates(context.Background(), 0, 30)
	assert.ErrorContains(t, err, "failed to decode updates")
}
