package instancemeta

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "http://169.254.169.254"

	tokenPath    = "/latest/api/token"
	metadataPath = "/latest/meta-data/"

	tokenTTLHeader = "X-aws-ec2-metadata-token-ttl-seconds"
	tokenHeader    = "X-aws-ec2-metadata-token"
	tokenTTL       = "21600"
)

// InstanceMetadata is the subset of instance metadata shown on the system
// configuration page.
type InstanceMetadata struct {
	InstanceID       string `json:"instance_id"`
	InstanceType     string `json:"instance_type"`
	AvailabilityZone string `json:"availability_zone"`
	LocalIPv4        string `json:"local_ipv4"`
	PublicIPv4       string `json:"public_ipv4,omitempty"`
}

// Client fetches instance metadata over IMDSv2 (session token first, then
// authenticated metadata reads).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the metadata endpoint, mainly for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewClient creates a metadata client with a short timeout so a missing
// metadata service degrades quickly instead of stalling the request.
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: time.Second},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Fetch retrieves the instance metadata. The public IPv4 address is
// optional; instances without one are not an error.
func (c *Client) Fetch(ctx context.Context) (*InstanceMetadata, error) {
	token, err := c.fetchToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata token: %w", err)
	}

	meta := &InstanceMetadata{}
	fields := []struct {
		path string
		dest *string
	}{
		{"instance-id", &meta.InstanceID},
		{"instance-type", &meta.InstanceType},
		{"placement/availability-zone", &meta.AvailabilityZone},
		{"local-ipv4", &meta.LocalIPv4},
	}

	for _, field := range fields {
		value, err := c.fetchField(ctx, token, field.path)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", field.path, err)
		}
		*field.dest = value
	}

	publicIP, err := c.fetchField(ctx, token, "public-ipv4")
	if err != nil {
		slog.Info("No public IPv4 in instance metadata", "error", err)
	} else {
		meta.PublicIPv4 = publicIP
	}

	return meta, nil
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+tokenPath, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set(tokenTTLHeader, tokenTTL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) fetchField(ctx context.Context, token, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+metadataPath+path, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set(tokenHeader, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
