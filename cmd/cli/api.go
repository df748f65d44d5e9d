package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/and161185/dailydeck/internal/model"
)

// apiClient talks to the dailydeck server API.
type apiClient struct {
	base  string
	token string
	hc    *http.Client
}

func newAPIClient(base, token string) *apiClient {
	return &apiClient{base: base, token: token, hc: &http.Client{Timeout: 15 * time.Second}}
}

func (c *apiClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server: %s (%d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("server: status %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *apiClient) signup(ctx context.Context, email, password, first, last string) (string, error) {
	var resp struct {
		UserID string `json:"userId"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": email, "password": password, "firstName": first, "lastName": last,
	}, &resp)
	return resp.UserID, err
}

type loginResult struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   string `json:"expiresAt"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (c *apiClient) login(ctx context.Context, email, password string) (loginResult, error) {
	var resp loginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, &resp)
	return resp, err
}

type historyItem struct {
	ID       string     `json:"id"`
	CardID   string     `json:"cardId"`
	CardData model.Card `json:"cardData"`
	CardType string     `json:"cardType"`
	DrawnAt  string     `json:"drawnAt"`
}

func (c *apiClient) history(ctx context.Context, cardType string, limit, offset int) ([]historyItem, error) {
	var resp struct {
		DrawnCards []historyItem `json:"drawnCards"`
	}
	path := fmt.Sprintf("/api/drawn-cards?cardType=%s&limit=%d&offset=%d", cardType, limit, offset)
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	return resp.DrawnCards, err
}
