package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// Doer sends one HTTP request. *client.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req *protocol.Request, resp *protocol.Response) error
}

// Client is the SDK client for the Parley API
type Client struct {
	baseURL    string
	httpClient Doer
	token      string
}

// ClientOption is a function to configure the client
type ClientOption func(*Client)

// WithHertzClient sets a custom Hertz client
func WithHertzClient(httpClient *client.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithDoer sets any request executor, such as an in-process router in tests
func WithDoer(doer Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithToken sets the bearer token issued by the identity provider
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new SDK client
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	c := &Client{baseURL: baseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient != nil {
		return c, nil
	}

	httpClient, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithClientReadTimeout(30*time.Second),
		client.WithWriteTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}
	c.httpClient = httpClient
	return c, nil
}

// MustNewClient creates a new SDK client and panics on error
func MustNewClient(baseURL string, opts ...ClientOption) *Client {
	c, err := NewClient(baseURL, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// SetToken sets the authentication token
func (c *Client) SetToken(token string) {
	c.token = token
}

// GetToken returns the current token
func (c *Client) GetToken() string {
	return c.token
}

// do sends the request and decodes the envelope into result
func (c *Client) do(ctx context.Context, req *protocol.Request, result interface{}) error {
	resp := &protocol.Response{}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if err := c.httpClient.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	var apiResp Response
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode(), err)
	}
	if apiResp.Code != CodeSuccess {
		return &Error{Code: apiResp.Code, Msg: apiResp.Msg}
	}

	if result != nil && len(apiResp.Data) > 0 {
		if err := json.Unmarshal(apiResp.Data, result); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// get makes a GET request with query parameters
func (c *Client) get(ctx context.Context, path string, params map[string]string, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		query := url.Values{}
		for k, v := range params {
			query.Set(k, v)
		}
		reqURL += "?" + query.Encode()
	}

	req := &protocol.Request{}
	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(reqURL)
	return c.do(ctx, req, result)
}

// post makes a POST request with a JSON body
func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	req := &protocol.Request{}
	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentTypeBytes([]byte(consts.MIMEApplicationJSON))

	if body == nil {
		body = struct{}{}
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	req.SetBody(jsonBody)
	return c.do(ctx, req, result)
}
