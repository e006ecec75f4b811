// Package services contains external integrations for the outreach engine
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// SearchFilters is the targeting payload for a profile search.
// Keywords already has denylisted tokens removed by the caller.
type SearchFilters struct {
	Keywords   string   `json:"keywords"`
	Locations  []string `json:"locations,omitempty"`
	Industries []string `json:"industries,omitempty"`
}

// ProfileResult is one row returned by a profile search
type ProfileResult struct {
	ExternalID string `json:"provider_id"`
	Name       string `json:"name"`
	Company    string `json:"company"`
	JobTitle   string `json:"headline"`
	Location   string `json:"location"`
	AvatarURL  string `json:"profile_picture_url"`
}

// ChatAttendee is a participant of a provider chat
type ChatAttendee struct {
	ExternalProfileID string `json:"provider_id"`
	Name              string `json:"name"`
}

// Chat is a provider conversation thread
type Chat struct {
	ID        string         `json:"id"`
	Attendees []ChatAttendee `json:"attendees"`
}

// ChatMessage is one message within a provider chat
type ChatMessage struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// MessagingClient is the provider contract the pipeline depends on. Extracted
// as a minimal interface to keep the flows independent and easy to test.
type MessagingClient interface {
	IsConfigured(ctx context.Context) bool
	SearchProfiles(ctx context.Context, accountID string, filters SearchFilters, limit int) ([]ProfileResult, error)
	SendConnectionRequest(ctx context.Context, accountID, externalProfileID, message string) error
	GetChats(ctx context.Context, accountID string) ([]Chat, error)
	StartChat(ctx context.Context, accountID, externalProfileID, firstMessage string) (string, error)
	SendMessage(ctx context.Context, chatID, message string) error
	GetChatMessages(ctx context.Context, chatID string) ([]ChatMessage, error)
}

// UnipileClient implements MessagingClient against the Unipile HTTP API
type UnipileClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewUnipileClient creates a Unipile client. baseURL is the tenant DSN, e.g.
// https://api1.unipile.com:13443
func NewUnipileClient(baseURL, apiKey string, timeout time.Duration) *UnipileClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &UnipileClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// IsConfigured reports whether the client has a usable credential
func (c *UnipileClient) IsConfigured(ctx context.Context) bool {
	return c.apiKey != "" && c.baseURL != ""
}

func (c *UnipileClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		buf = bytes.NewBuffer(b)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *UnipileClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("unipile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unipile returned status %d for %s %s", resp.StatusCode, req.Method, req.URL.Path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode unipile response: %w", err)
	}
	return nil
}

// SearchProfiles issues one people search. limit is a result-count hint.
func (c *UnipileClient) SearchProfiles(ctx context.Context, accountID string, filters SearchFilters, limit int) ([]ProfileResult, error) {
	payload := map[string]any{
		"api":      "classic",
		"category": "people",
		"keywords": filters.Keywords,
	}
	if len(filters.Locations) > 0 {
		payload["location"] = filters.Locations
	}
	if len(filters.Industries) > 0 {
		payload["industry"] = filters.Industries
	}

	q := url.Values{}
	q.Set("account_id", accountID)
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/linkedin/search?"+q.Encode(), payload)
	if err != nil {
		return nil, err
	}

	var body struct {
		Items []ProfileResult `json:"items"`
	}
	if err := c.do(req, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// SendConnectionRequest sends a connection invitation with a note
func (c *UnipileClient) SendConnectionRequest(ctx context.Context, accountID, externalProfileID, message string) error {
	payload := map[string]any{
		"account_id":  accountID,
		"provider_id": externalProfileID,
		"message":     message,
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/users/invite", payload)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// GetChats lists conversation threads for the account
func (c *UnipileClient) GetChats(ctx context.Context, accountID string) ([]Chat, error) {
	q := url.Values{}
	q.Set("account_id", accountID)

	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/chats?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Items []Chat `json:"items"`
	}
	if err := c.do(req, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// StartChat opens a new thread with the prospect, delivering firstMessage as
// the opening message, and returns the new chat id
func (c *UnipileClient) StartChat(ctx context.Context, accountID, externalProfileID, firstMessage string) (string, error) {
	payload := map[string]any{
		"account_id":    accountID,
		"attendees_ids": []string{externalProfileID},
		"text":          firstMessage,
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/chats", payload)
	if err != nil {
		return "", err
	}

	var body struct {
		ChatID string `json:"chat_id"`
	}
	if err := c.do(req, &body); err != nil {
		return "", err
	}
	if body.ChatID == "" {
		return "", fmt.Errorf("unipile returned empty chat id")
	}
	return body.ChatID, nil
}

// SendMessage delivers a message into an existing chat
func (c *UnipileClient) SendMessage(ctx context.Context, chatID, message string) error {
	payload := map[string]any{
		"text": message,
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/chats/"+url.PathEscape(chatID)+"/messages", payload)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// GetChatMessages lists messages of a chat, newest first
func (c *UnipileClient) GetChatMessages(ctx context.Context, chatID string) ([]ChatMessage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/chats/"+url.PathEscape(chatID)+"/messages", nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Items []ChatMessage `json:"items"`
	}
	if err := c.do(req, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}
