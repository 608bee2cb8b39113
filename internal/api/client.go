package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnavailable is returned when no status API is configured or reachable.
var ErrUnavailable = errors.New("status API unavailable")

// ErrUnauthorized is returned when the daemon rejects the bearer token.
var ErrUnauthorized = errors.New("status API rejected token")

// ErrNotFound is returned for an instance the daemon does not mirror.
var ErrNotFound = errors.New("instance not found")

// Client reads the daemon's status API.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// NewClient returns a client for bind ("host:port" or a URL). An empty bind
// yields a nil client whose calls return ErrUnavailable. A non-empty token is
// sent as a bearer credential.
func NewClient(bind, token string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, nil
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, err
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Client{
		base:  base,
		token: strings.TrimSpace(token),
		http:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Health returns the daemon status.
func (c *Client) Health(ctx context.Context) (DaemonStatus, error) {
	var payload DaemonStatus
	err := c.get(ctx, "/api/health", &payload)
	return payload, err
}

// Instances returns every instance status.
func (c *Client) Instances(ctx context.Context) ([]InstanceStatus, error) {
	var payload InstanceListResponse
	if err := c.get(ctx, "/api/instances", &payload); err != nil {
		return nil, err
	}
	return payload.Instances, nil
}

// Instance returns the status of one instance.
func (c *Client) Instance(ctx context.Context, id string) (InstanceStatus, error) {
	var payload InstanceResponse
	err := c.get(ctx, "/api/instances/"+url.PathEscape(id), &payload)
	return payload.Instance, err
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if c == nil {
		return ErrUnavailable
	}
	endpoint := c.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var apiErr ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("status api returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("status api returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// IsUnavailable reports whether err means the daemon could not be reached.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.Is(err, ErrUnavailable) || errors.As(err, &opErr)
}
