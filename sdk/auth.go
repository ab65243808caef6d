package sdk

import "context"

// Logout revokes the current token and marks the caller offline. The client token is cleared.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}
