package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func Test_apiClient_Signup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/signup" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "u@example.com" {
			t.Fatalf("body: %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"userId": "uid-1"})
	}))
	defer srv.Close()

	id, err := newAPIClient(srv.URL, "").signup(context.Background(), "u@example.com", "pw", "", "")
	if err != nil || id != "uid-1" {
		t.Fatalf("signup: id=%q err=%v", id, err)
	}
}

func Test_apiClient_Login_And_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accessToken": "tok",
			"expiresAt":   "2026-01-02T15:04:05Z",
			"user":        map[string]string{"id": "uid-1", "email": "u@example.com"},
		})
	}))
	defer srv.Close()

	res, err := newAPIClient(srv.URL, "").login(context.Background(), "u@example.com", "good")
	if err != nil || res.AccessToken != "tok" || res.User.ID != "uid-1" {
		t.Fatalf("login: res=%+v err=%v", res, err)
	}

	_, err = newAPIClient(srv.URL, "").login(context.Background(), "u@example.com", "bad")
	if err == nil || err.Error() != "server: bad credentials (401)" {
		t.Fatalf("want decorated server error, got %v", err)
	}
}

func Test_apiClient_History_SendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("auth header: %q", got)
		}
		if r.URL.RawQuery != "cardType=daily&limit=5&offset=10" {
			t.Fatalf("query: %q", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"drawnCards": []map[string]any{{"cardId": "c1", "cardType": "daily"}},
		})
	}))
	defer srv.Close()

	items, err := newAPIClient(srv.URL, "tok").history(context.Background(), "daily", 5, 10)
	if err != nil || len(items) != 1 || items[0].CardID != "c1" {
		t.Fatalf("history: items=%v err=%v", items, err)
	}
}
