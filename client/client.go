// Package client is a Go client for the palette-data HTTP API.
//
// Reads return the caller's palettes in display order. Writes are sent as a
// batch of operations and return one result per operation:
//
//	c := client.New("https://palettes.example.com", client.WithToken(jwt))
//	results, err := c.ApplyOps(ctx,
//		client.CreatePaletteOp("Mos Gold", "#ffdf00"),
//		client.RenamePaletteOp(id, "Primary Colors"),
//	)
//
// A batch that fails validation returns an *Error with status 400 and the
// server's message; no operation in it was applied.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const palettesPath = "/api/v1/palettes"

type Palette struct {
	ID     string   `json:"id"`
	Name   *string  `json:"name,omitempty"`
	Colors []string `json:"colors"`
}

type Op struct {
	Method string         `json:"method"`
	Data   map[string]any `json:"data"`
}

type Result struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	PaletteID string `json:"paletteId,omitempty"`
}

// CreatePaletteOp builds a CREATE_PALETTE op. An empty name creates an unnamed palette.
func CreatePaletteOp(name string, colors ...string) Op {
	data := map[string]any{"colors": colors}
	if name != "" {
		data["name"] = name
	}
	return Op{Method: "CREATE_PALETTE", Data: data}
}

// DeletePaletteOp builds a DELETE_PALETTE op. index is the palette's position
// as last read; the server refuses the delete if it has moved.
func DeletePaletteOp(paletteID string, index int) Op {
	return Op{Method: "DELETE_PALETTE", Data: map[string]any{"paletteId": paletteID, "paletteIndex": index}}
}

func RenamePaletteOp(paletteID, name string) Op {
	return Op{Method: "RENAME_PALETTE", Data: map[string]any{"paletteId": paletteID, "name": name}}
}

// Error is returned for any non-2xx response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("palette-data: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("palette-data: %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	http *resty.Client
}

type Option func(*resty.Client)

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *resty.Client) { c.SetAuthToken(token) }
}

// WithDevUser names the caller for servers running with DEV_BYPASS_AUTH.
func WithDevUser(userID string) Option {
	return func(c *resty.Client) { c.SetHeader("X-User-Id", userID) }
}

func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().SetBaseURL(baseURL)
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{http: rc}
}

// GetPalettes returns the caller's palettes in display order.
func (c *Client) GetPalettes(ctx context.Context) ([]Palette, error) {
	var palettes []Palette
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&palettes).
		Get(palettesPath)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", palettesPath, err)
	}
	if resp.IsError() {
		return nil, responseError(resp)
	}
	return palettes, nil
}

// ApplyOps submits ops as one batch. Results are in the same order as ops.
func (c *Client) ApplyOps(ctx context.Context, ops ...Op) ([]Result, error) {
	if ops == nil {
		ops = []Op{}
	}
	var out struct {
		Results []Result `json:"results"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"ops": ops}).
		SetResult(&out).
		Post(palettesPath)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", palettesPath, err)
	}
	if resp.IsError() {
		return nil, responseError(resp)
	}
	return out.Results, nil
}

func responseError(resp *resty.Response) error {
	return &Error{StatusCode: resp.StatusCode(), Message: resp.String()}
}
