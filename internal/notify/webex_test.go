package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sunieldevarapu/deployment-scheduler/internal/config"
)

func TestWebex_Post(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	wx := NewWebex(config.Webex{URL: srv.URL, RoomID: "room-1", Token: "tok"}, nil)
	if err := wx.Post(context.Background(), "**hello**"); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["roomId"] != "room-1" || gotBody["markdown"] != "**hello**" {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestWebex_Post_non2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	wx := NewWebex(config.Webex{URL: srv.URL, RoomID: "room-1", Token: "bad"}, nil)
	if err := wx.Post(context.Background(), "msg"); err == nil {
		t.Fatal("expected error from 401")
	}
}

func TestNoop(t *testing.T) {
	t.Parallel()

	if err := (Noop{}).Post(context.Background(), "dropped"); err != nil {
		t.Fatalf("Noop.Post: %v", err)
	}
}
