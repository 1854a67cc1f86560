// Package dockerapi is a minimal Docker Engine API client covering the four
// calls the panel proxies: list, start, stop, restart.
package dockerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultSocketPath = "/var/run/docker.sock"

// APIError is a failed engine call. The engine's own message is passed
// through to the caller untouched and the call is never retried.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("docker engine: %s (status %d)", e.Message, e.StatusCode)
}

type Client struct {
	base string
	http *http.Client
}

// New builds a client for the given host. A path is treated as a unix
// socket; anything else as a TCP host with port 2375 implied.
// "unix://" and "tcp://" prefixes are accepted and stripped.
func New(host string) *Client {
	host = strings.TrimPrefix(host, "unix://")
	host = strings.TrimPrefix(host, "tcp://")
	if host == "" {
		host = DefaultSocketPath
	}

	if strings.HasPrefix(host, "/") {
		socket := host
		return &Client{
			base: "http://docker",
			http: &http.Client{
				Transport: &http.Transport{
					DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
						var d net.Dialer
						return d.DialContext(ctx, "unix", socket)
					},
				},
			},
		}
	}

	if !strings.Contains(host, ":") {
		host += ":2375"
	}
	return &Client{
		base: "http://" + host,
		http: &http.Client{Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		}},
	}
}

// ListAll returns a snapshot of every container, running or not. Snapshots
// are never cached; callers re-fetch on each request.
func (c *Client) ListAll(ctx context.Context) ([]Container, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/containers/json?all=1", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	var containers []Container
	if err := json.NewDecoder(resp.Body).Decode(&containers); err != nil {
		return nil, fmt.Errorf("decode container list: %w", err)
	}
	return containers, nil
}

func (c *Client) Start(ctx context.Context, id string) error {
	return c.post(ctx, id, "start")
}

func (c *Client) Stop(ctx context.Context, id string) error {
	return c.post(ctx, id, "stop")
}

func (c *Client) Restart(ctx context.Context, id string) error {
	return c.post(ctx, id, "restart")
}

func (c *Client) post(ctx context.Context, id, verb string) error {
	u := fmt.Sprintf("%s/containers/%s/%s", c.base, url.PathEscape(id), verb)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 204 on success; 304 means the container was already in that state,
	// which the engine reports as "not modified" and callers see as an error.
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return apiError(resp)
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var msg struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &msg); err == nil && msg.Message != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: msg.Message}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		text = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Message: text}
}
