package notify

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carinfo/api/internal/report"
)

type fakeTelegram struct {
	mu     sync.Mutex
	chatID string
	text   string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"carinfo","username":"carinfo_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.chatID = r.FormValue("chat_id")
		f.text = r.FormValue("text")
		f.mu.Unlock()
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":-100,"type":"group"},"text":"ok"}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func TestTelegram_Notify(t *testing.T) {
	fake := &fakeTelegram{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	tg, err := NewTelegramWithClient("token", server.URL+"/bot%s/%s", -100, server.Client())
	require.NoError(t, err)

	s := report.Summary{Total: 3, Succeeded: 2, Failed: []string{"b.jpg"}}
	require.NoError(t, tg.Notify(s, "carinfo.json"))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "-100", fake.chatID)
	assert.Equal(t, FormatSummary(s, "carinfo.json"), fake.text)
}

func TestNewTelegram_BadToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
	}))
	t.Cleanup(server.Close)

	_, err := NewTelegramWithClient("bad", server.URL+"/bot%s/%s", 1, server.Client())
	assert.ErrorContains(t, err, "Unauthorized")
}

func TestFormatSummary(t *testing.T) {
	got := FormatSummary(report.Summary{Total: 2, Succeeded: 2}, "out.json")
	assert.Equal(t, "Car info run finished: 2/2 images identified.\nReport: out.json", got)

	failed := make([]string, maxListed+5)
	for i := range failed {
		failed[i] = fmt.Sprintf("f%02d.jpg", i)
	}
	got = FormatSummary(report.Summary{Total: 30, Succeeded: 5, Failed: failed}, "out.json")
	assert.Contains(t, got, "Without data (25):")
	assert.Contains(t, got, "- f19.jpg\n")
	assert.NotContains(t, got, "f20.jpg")
	assert.Contains(t, got, "… and 5 more\n")
}
