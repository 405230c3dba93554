// Package sdk is the Go client for the drover daemon API.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strings"

	"drover"
	"drover/api"
)

const envEndpoint = "DROVERD_ENDPOINT"

// DefaultEndpoint returns the daemon endpoint to use when none is
// configured: $DROVERD_ENDPOINT, then the platform socket path.
func DefaultEndpoint() string {
	if fromEnv := strings.TrimSpace(os.Getenv(envEndpoint)); fromEnv != "" {
		return fromEnv
	}
	if runtime.GOOS == "darwin" {
		return "/tmp/droverd.sock"
	}
	return "/var/run/droverd.sock"
}

// API is the operation surface of the drover daemon.
type API interface {
	Spawn(ctx context.Context, spec drover.SpawnSpec) (drover.NodeInfo, error)
	Init(ctx context.Context, handle string, cfg map[string]any) (drover.NodeInfo, error)
	Start(ctx context.Context, handle string) (drover.NodeInfo, error)
	Stop(ctx context.Context, handle string) error
	Cleanup(ctx context.Context, handle string) error
	PID(ctx context.Context, handle string) (int, error)
	Version(ctx context.Context, handle string) (string, error)
	Status(ctx context.Context, handle string) (drover.NodeInfo, error)
	List(ctx context.Context) ([]drover.NodeInfo, error)
}

type Client struct {
	base string
	http *http.Client
}

// New connects to a daemon endpoint: a unix socket path, a TCP
// host:port, or a full http:// base URL.
func New(endpoint string) *Client {
	switch {
	case strings.HasPrefix(endpoint, "http://"), strings.HasPrefix(endpoint, "https://"):
		return &Client{base: strings.TrimSuffix(endpoint, "/"), http: &http.Client{}}
	case strings.ContainsRune(endpoint, os.PathSeparator):
		return &Client{
			// Host is a placeholder; the dialer always hits the socket.
			base: "http://droverd",
			http: &http.Client{
				Transport: &http.Transport{
					DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
						var d net.Dialer
						return d.DialContext(ctx, "unix", endpoint)
					},
				},
			},
		}
	default:
		return &Client{base: "http://" + endpoint, http: &http.Client{}}
	}
}

func (c *Client) Spawn(ctx context.Context, spec drover.SpawnSpec) (drover.NodeInfo, error) {
	var info drover.NodeInfo
	err := c.do(ctx, http.MethodPost, "/v1/nodes", spec, &info)
	return info, err
}

func (c *Client) Init(ctx context.Context, handle string, cfg map[string]any) (drover.NodeInfo, error) {
	var info drover.NodeInfo
	err := c.do(ctx, http.MethodPost, nodePath(handle, "init"), cfg, &info)
	return info, err
}

func (c *Client) Start(ctx context.Context, handle string) (drover.NodeInfo, error) {
	var info drover.NodeInfo
	err := c.do(ctx, http.MethodPost, nodePath(handle, "start"), nil, &info)
	return info, err
}

func (c *Client) Stop(ctx context.Context, handle string) error {
	return c.do(ctx, http.MethodPost, nodePath(handle, "stop"), nil, nil)
}

func (c *Client) Cleanup(ctx context.Context, handle string) error {
	return c.do(ctx, http.MethodDelete, nodePath(handle), nil, nil)
}

func (c *Client) PID(ctx context.Context, handle string) (int, error) {
	var resp api.PIDResponse
	err := c.do(ctx, http.MethodGet, nodePath(handle, "pid"), nil, &resp)
	return resp.PID, err
}

func (c *Client) Version(ctx context.Context, handle string) (string, error) {
	var resp api.VersionResponse
	err := c.do(ctx, http.MethodGet, nodePath(handle, "version"), nil, &resp)
	return resp.Version, err
}

func (c *Client) Status(ctx context.Context, handle string) (drover.NodeInfo, error) {
	var info drover.NodeInfo
	err := c.do(ctx, http.MethodGet, nodePath(handle), nil, &info)
	return info, err
}

func (c *Client) List(ctx context.Context) ([]drover.NodeInfo, error) {
	var resp api.ListResponse
	err := c.do(ctx, http.MethodGet, "/v1/nodes", nil, &resp)
	return resp.Nodes, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
		}
		return envelope.Error.Err()
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func nodePath(handle string, parts ...string) string {
	p := "/v1/nodes/" + url.PathEscape(handle)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}
