// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

// Package bitable is a minimal client for the Feishu Bitable open API: the
// tenant token exchange, record insertion, and filtered record search. The
// graph layer talks to it through the TripleBackend adapter.
package bitable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	recallerr "github.com/openclaw/recall/pkg/errors"
)

// DefaultEndpoint is the public Feishu open platform host.
const DefaultEndpoint = "https://open.feishu.cn"

const defaultTimeout = 30 * time.Second

// tokenSlack is subtracted from the advertised expiry so a token is never
// used in its final seconds.
const tokenSlack = 60 * time.Second

// Config holds the connection settings for one Bitable app table.
type Config struct {
	// Endpoint overrides the API host, mainly for tests.
	Endpoint string
	// AppID and AppSecret are the application credentials exchanged for a
	// tenant access token.
	AppID     string
	AppSecret string
	// AppToken identifies the Bitable app, TableID the table within it.
	AppToken string
	TableID  string
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the Bitable API. It is safe for concurrent use; the
// tenant token is cached and refreshed under a mutex.
type Client struct {
	cfg  Config
	http *http.Client

	mu          sync.Mutex
	tenantToken string
	tokenExpiry time.Time
}

// NewClient validates the config and returns a client. The tenant token is
// fetched lazily on first use.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, recallerr.New(recallerr.CodeGraphAuthFailure, "app_id and app_secret are required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{cfg: cfg, http: httpClient}, nil
}

type tokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"` // seconds
}

// token returns a valid tenant access token, exchanging credentials when the
// cached one is missing or about to expire. Auth failures are terminal: the
// credentials are wrong, and retrying the same exchange cannot help.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tenantToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.tenantToken, nil
	}

	body, err := json.Marshal(map[string]string{
		"app_id":     c.cfg.AppID,
		"app_secret": c.cfg.AppSecret,
	})
	if err != nil {
		return "", recallerr.Wrap(err, recallerr.CodeGraphAuthFailure, "encoding token request")
	}

	url := c.cfg.Endpoint + "/open-apis/auth/v3/tenant_access_token/internal"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", recallerr.Wrap(err, recallerr.CodeGraphAuthFailure, "building token request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", recallerr.Wrap(err, recallerr.CodeGraphAuthFailure, "exchanging app credentials")
	}
	defer func() { _ = resp.Body.Close() }()

	var tr tokenResponse
	if err := decodeJSON(resp, &tr); err != nil {
		return "", recallerr.Wrap(err, recallerr.CodeGraphAuthFailure, "decoding token response")
	}
	if tr.Code != 0 {
		return "", recallerr.Errorf(recallerr.CodeGraphAuthFailure,
			"token exchange rejected: code %d: %s", tr.Code, tr.Msg)
	}
	if tr.TenantAccessToken == "" {
		return "", recallerr.New(recallerr.CodeGraphAuthFailure, "token exchange returned empty token")
	}

	c.tenantToken = tr.TenantAccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.Expire)*time.Second - tokenSlack)
	return c.tenantToken, nil
}

// apiResponse is the common envelope every Bitable endpoint returns.
type apiResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// call performs an authenticated POST of a JSON payload and decodes the
// data envelope into out.
func (c *Client) call(ctx context.Context, path string, payload, out any) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env apiResponse
	if err := decodeJSON(resp, &env); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	if env.Code != 0 {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return recallerr.Errorf(recallerr.CodeGraphAuthFailure,
				"request rejected: code %d: %s", env.Code, env.Msg)
		}
		return fmt.Errorf("api error from %s: code %d: %s", path, env.Code, env.Msg)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding data from %s: %w", path, err)
		}
	}
	return nil
}

func decodeJSON(resp *http.Response, out any) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("status %d: %w", resp.StatusCode, err)
	}
	return nil
}

// FilterCondition is one exact-match clause in a record search.
type FilterCondition struct {
	FieldName string   `json:"field_name"`
	Operator  string   `json:"operator"`
	Value     []string `json:"value"`
}

type recordFilter struct {
	Conjunction string            `json:"conjunction"`
	Conditions  []FilterCondition `json:"conditions"`
}

type searchRequest struct {
	Filter   *recordFilter `json:"filter,omitempty"`
	PageSize int           `json:"page_size"`
}

// RecordItem is a raw table row: an opaque record id plus its field map.
type RecordItem struct {
	RecordID string         `json:"record_id"`
	Fields   map[string]any `json:"fields"`
}

type searchResponse struct {
	Items []RecordItem `json:"items"`
}

type insertRequest struct {
	Fields map[string]any `json:"fields"`
}

type insertResponse struct {
	Record RecordItem `json:"record"`
}

// InsertRecord appends a row to the configured table and returns its record
// id.
func (c *Client) InsertRecord(ctx context.Context, fields map[string]any) (string, error) {
	path := fmt.Sprintf("/open-apis/bitable/v1/apps/%s/tables/%s/records", c.cfg.AppToken, c.cfg.TableID)

	var out insertResponse
	if err := c.call(ctx, path, insertRequest{Fields: fields}, &out); err != nil {
		if recallerr.IsAuthFailure(err) {
			return "", err
		}
		return "", recallerr.Wrap(err, recallerr.CodeGraphBackendWriteFailure, "inserting record")
	}
	return out.Record.RecordID, nil
}

// SearchRecords queries the table. Conditions combine conjunctively; an
// empty condition list searches the whole table up to pageSize rows.
func (c *Client) SearchRecords(ctx context.Context, conditions []FilterCondition, pageSize int) ([]RecordItem, error) {
	path := fmt.Sprintf("/open-apis/bitable/v1/apps/%s/tables/%s/records/search", c.cfg.AppToken, c.cfg.TableID)

	req := searchRequest{PageSize: pageSize}
	if len(conditions) > 0 {
		req.Filter = &recordFilter{Conjunction: "and", Conditions: conditions}
	}

	var out searchResponse
	if err := c.call(ctx, path, req, &out); err != nil {
		if recallerr.IsAuthFailure(err) {
			return nil, err
		}
		return nil, recallerr.Wrap(err, recallerr.CodeGraphBackendReadFailure, "searching records")
	}
	return out.Items, nil
}
