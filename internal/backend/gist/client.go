// Package gist implements the remote backup client against a gist-style
// document API.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gtodo/internal/service"
	"gtodo/internal/storage"
)

const (
	// DefaultTimeout bounds each API call so a hung request cannot hold
	// the store's sync gate forever.
	DefaultTimeout = 15 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 16 << 20
)

// Credentials identify the remote document.
type Credentials struct {
	Token      string
	DocumentID string
}

// CredentialsFrom extracts credentials from settings.
func CredentialsFrom(s service.Settings) Credentials {
	return Credentials{Token: s.GistToken, DocumentID: s.GistID}
}

func (c Credentials) configured() bool {
	return c.Token != "" && c.DocumentID != ""
}

// Options configures a Client. Zero values take defaults.
type Options struct {
	Endpoint   string
	Filename   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client pushes and pulls the whole application state as the content of
// one file inside a remote gist. It holds no application state.
type Client struct {
	httpClient *http.Client
	endpoint   string
	filename   string
	timeout    time.Duration
	log        *slog.Logger
}

// New creates a gist client.
func New(opts Options) *Client {
	c := &Client{
		httpClient: opts.HTTPClient,
		endpoint:   strings.TrimRight(opts.Endpoint, "/"),
		filename:   opts.Filename,
		timeout:    opts.Timeout,
		log:        opts.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.endpoint == "" {
		c.endpoint = "https://gitee.com/api/v5/gists"
	}
	if c.filename == "" {
		c.filename = "todo_backup.json"
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

type gistFile struct {
	Content string `json:"content"`
}

type gistDocument struct {
	Files map[string]*gistFile `json:"files"`
}

type apiError struct {
	Message string `json:"message"`
}

// Push replaces the backup file's content with the serialized state.
func (c *Client) Push(ctx context.Context, state service.State, creds Credentials) error {
	if !creds.configured() {
		return ErrNotConfigured
	}

	content, err := storage.Encode(state)
	if err != nil {
		return err
	}
	body, err := json.Marshal(gistDocument{
		Files: map[string]*gistFile{c.filename: {Content: string(content)}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodPatch, creds, body)
	if err != nil {
		return transportError("push", err)
	}
	defer resp.Body.Close()

	if err := checkResponse("push", resp); err != nil {
		return err
	}
	// Drain so the connection is reused; the push already succeeded.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	c.log.Debug("pushed state", "document", creds.DocumentID, "bytes", len(content))
	return nil
}

// Pull fetches the backup file and parses it as the full state.
func (c *Client) Pull(ctx context.Context, creds Credentials) (service.State, error) {
	if !creds.configured() {
		return service.State{}, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodGet, creds, nil)
	if err != nil {
		return service.State{}, transportError("pull", err)
	}
	defer resp.Body.Close()

	if err := checkResponse("pull", resp); err != nil {
		return service.State{}, err
	}

	var doc gistDocument
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&doc); err != nil {
		return service.State{}, fmt.Errorf("invalid response: %w", err)
	}

	file := doc.Files[c.filename]
	if file == nil || strings.TrimSpace(file.Content) == "" {
		return service.State{}, ErrEmptyRemote
	}

	state, err := storage.Decode([]byte(file.Content))
	if err != nil {
		return service.State{}, fmt.Errorf("invalid remote backup: %w", err)
	}

	c.log.Debug("pulled state", "document", creds.DocumentID,
		"lists", len(state.Lists), "tasks", len(state.Tasks))
	return state, nil
}

func (c *Client) do(ctx context.Context, method string, creds Credentials, body []byte) (*http.Response, error) {
	u := c.endpoint + "/" + url.PathEscape(creds.DocumentID) + "?access_token=" + url.QueryEscape(creds.Token)

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// checkResponse converts a non-2xx response into a RemoteError, using the
// server's message field when it sent one.
func checkResponse(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := http.StatusText(resp.StatusCode)
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var apiErr apiError
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
		msg = apiErr.Message
	}
	return &RemoteError{Op: op, Status: resp.StatusCode, Message: msg}
}
