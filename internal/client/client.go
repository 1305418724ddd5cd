package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/storage"
)

// Client talks to the storefront REST backend. The bearer token lives in
// the device store so every Client built over the same store shares the
// session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      storage.Store
	log        zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, store storage.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		store: store,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

type authMode int

const (
	authRequired authMode = iota
	authOptional
	authNone
)

// Token returns the stored bearer token. A store read failure is logged
// and treated as no token.
func (c *Client) Token(ctx context.Context) (string, error) {
	tok, err := c.store.Get(ctx, storage.KeyAuthToken)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		c.log.Warn().Err(err).Msg("failed to read auth token")
	}
	if err != nil || tok == "" {
		return "", ErrNotAuthenticated
	}
	return tok, nil
}

func (c *Client) SetToken(ctx context.Context, token string) error {
	return c.store.Set(ctx, storage.KeyAuthToken, token)
}

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp models.TokenResponse
	req := models.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/users/login/", authNone, req, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return errors.New("login response carried no token")
	}
	if err := c.SetToken(ctx, resp.Token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	c.log.Info().Str("username", username).Msg("logged in")
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.store.Delete(ctx, storage.KeyAuthToken)
}

func (c *Client) expireSession(ctx context.Context) {
	if err := c.store.Delete(ctx, storage.KeyAuthToken); err != nil {
		c.log.Warn().Err(err).Msg("failed to clear expired token")
	}
	c.log.Info().Msg("session expired, token cleared")
}

// resolve turns target into a request URL. Paths are appended to the base
// URL. Absolute URLs (pagination links) must share its scheme and host so
// the bearer token never leaves the backend.
func (c *Client) resolve(target string) (string, error) {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return c.baseURL + target, nil
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", target, err)
	}
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return "", fmt.Errorf("%w: %s", ErrForeignLink, target)
	}
	return u.String(), nil
}

// do sends one JSON request. target is either a path below the base URL
// or an absolute URL on the same host (pagination links).
func (c *Client) do(ctx context.Context, method, target string, auth authMode, body, out any) error {
	u, err := c.resolve(target)
	if err != nil {
		return err
	}

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if auth != authNone {
		tok, err := c.Token(ctx)
		switch {
		case err == nil:
			req.Header.Set("Authorization", "Bearer "+tok)
		case auth == authRequired:
			return err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Msg("api call")

	if resp.StatusCode == http.StatusUnauthorized {
		c.expireSession(ctx)
		return ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{
			Method:     method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       string(msg),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
