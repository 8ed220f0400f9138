// Package plannerapi implements the api.Client interface over the planner's
// JSON HTTP API.
package plannerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"plannercheck/internal/api"
	"plannercheck/internal/config"
	"plannercheck/internal/field"
	"plannercheck/internal/resource"
)

const (
	// SignInPath and SignUpPath are relative to the base URL.
	SignInPath = "/users/signin"
	SignUpPath = "/users/signup"

	// UserHeader carries the account email on authenticated calls.
	UserHeader = "X-User-ID"
)

var (
	tokenKeys  = []string{"token", "data.token", "accessToken"}
	userIDKeys = []string{"user._id", "user.id", "data.id", "data._id", "userId"}
)

// Client implements api.Client.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a client for cfg.Settings.APIURL. Every call is bounded by
// cfg.Settings.RequestTimeout.
func New(cfg *config.Config) *Client {
	return NewWithHTTPClient(cfg, &http.Client{})
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(cfg *config.Config, httpClient *http.Client) *Client {
	timeout := cfg.Settings.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.Settings.APIURL, "/"),
		http:    httpClient,
		timeout: timeout,
		logger:  cfg.Logger.Named("plannerapi"),
	}
}

// SignIn implements api.Client.
func (c *Client) SignIn(ctx context.Context, creds api.Credentials) (api.Session, error) {
	body, err := c.doStatus(ctx, c.http, http.MethodPost, SignInPath, "", map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	}, signInOK)
	if err != nil {
		return api.Session{}, err
	}

	rec, _ := body.(map[string]any)
	token := field.First(tokenKeys, rec)
	if !token.Found || token.Or("") == "" {
		return api.Session{}, api.ErrNoToken
	}

	return api.Session{
		Token:      token.Or(""),
		UserID:     field.First(userIDKeys, rec).Or(""),
		Email:      creds.Email,
		SignedInAt: time.Now(),
	}, nil
}

// SignUp implements api.Client.
func (c *Client) SignUp(ctx context.Context, creds api.Credentials) error {
	_, err := c.do(ctx, c.http, http.MethodPost, SignUpPath, "", map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
		"name":     creds.Name,
	})
	return err
}

// Create implements api.Client.
func (c *Client) Create(ctx context.Context, sess api.Session, kind resource.Kind, payload resource.Payload) (string, error) {
	body, err := c.do(ctx, c.authed(sess), http.MethodPost, kind.Path, sess.Email, payload)
	if err != nil {
		return "", err
	}
	rec, _ := body.(map[string]any)
	return field.First(kind.IDKeys(), rec).Or(""), nil
}

// List implements api.Client.
func (c *Client) List(ctx context.Context, sess api.Session, kind resource.Kind) ([]field.Record, error) {
	body, err := c.do(ctx, c.authed(sess), http.MethodGet, kind.Path, sess.Email, nil)
	if err != nil {
		return nil, err
	}
	return api.Records(body), nil
}

// authed returns an HTTP client that attaches the session token as a
// bearer credential.
func (c *Client) authed(sess api.Session) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: sess.Token,
		TokenType:   "Bearer",
	})
	return &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: c.http.Transport},
		Jar:       c.http.Jar,
	}
}

// do sends a JSON request and decodes the JSON response. Statuses other than
// 200/201 are returned as *googleapi.Error. An empty or non-JSON success
// body decodes to nil.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path, user string, payload any) (any, error) {
	return c.doStatus(ctx, hc, method, path, user, payload, api.StatusOK)
}

// signInOK accepts only 200; any other status leaves the account unauthenticated.
func signInOK(code int) bool { return code == http.StatusOK }

func (c *Client) doStatus(ctx context.Context, hc *http.Client, method, path, user string, payload any, ok func(int) bool) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if user != "" {
		req.Header.Set(UserHeader, user)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method), zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return nil, wrapError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request",
		zap.String("method", method), zap.String("path", path),
		zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	if !ok(resp.StatusCode) {
		return nil, wrapError(statusError(resp))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError(err)
	}
	var body any
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			c.logger.Debug("non-JSON response body", zap.String("path", path), zap.Error(err))
			return nil, nil
		}
	}
	return body, nil
}

// statusError converts a rejected response into a *googleapi.Error.
func statusError(resp *http.Response) error {
	if err := googleapi.CheckResponse(resp); err != nil {
		return err
	}
	// A 2xx the caller rejects: CheckResponse accepts it, the planner API does not.
	data, _ := io.ReadAll(resp.Body)
	return &googleapi.Error{
		Code:   resp.StatusCode,
		Body:   string(data),
		Header: resp.Header,
	}
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return api.ErrTimeout
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden) {
		return fmt.Errorf("%w: %w", api.ErrUnauthorized, err)
	}
	return err
}
