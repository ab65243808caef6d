package sdk

import "context"

// SyncUser creates or refreshes the caller's user record and returns its id
func (c *Client) SyncUser(ctx context.Context, req *SyncUserRequest) (string, error) {
	if req == nil {
		req = &SyncUserRequest{}
	}
	var result struct {
		UserId string `json:"user_id"`
	}
	if err := c.post(ctx, "/user/sync", req, &result); err != nil {
		return "", err
	}
	return result.UserId, nil
}

// GetMe returns the caller, or nil when the token is absent or not yet synced
func (c *Client) GetMe(ctx context.Context) (*UserInfo, error) {
	var result *UserInfo
	if err := c.get(ctx, "/user/me", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListUsers lists every user except the caller
func (c *Client) ListUsers(ctx context.Context) ([]*UserInfo, error) {
	var result []*UserInfo
	if err := c.get(ctx, "/user/list", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SearchUsers finds other users by name or email substring
func (c *Client) SearchUsers(ctx context.Context, query string) ([]*UserInfo, error) {
	var result []*UserInfo
	if err := c.get(ctx, "/user/search", map[string]string{"q": query}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SetOnline sets the caller's online flag
func (c *Client) SetOnline(ctx context.Context, isOnline bool) error {
	return c.post(ctx, "/user/online", map[string]bool{"is_online": isOnline}, nil)
}
