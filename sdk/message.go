package sdk

import "context"

// SendMessage sends a text or image message and returns its id
func (c *Client) SendMessage(ctx context.Context, req *SendMessageRequest) (string, error) {
	var result struct {
		MessageId string `json:"message_id"`
	}
	if err := c.post(ctx, "/msg/send", req, &result); err != nil {
		return "", err
	}
	return result.MessageId, nil
}

// ListMessages lists a conversation's messages in send order
func (c *Client) ListMessages(ctx context.Context, conversationId string) ([]*MessageView, error) {
	var result []*MessageView
	if err := c.get(ctx, "/msg/list", map[string]string{"conversation_id": conversationId}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListPinnedMessages lists a conversation's pinned messages
func (c *Client) ListPinnedMessages(ctx context.Context, conversationId string) ([]*MessageView, error) {
	var result []*MessageView
	if err := c.get(ctx, "/msg/pinned", map[string]string{"conversation_id": conversationId}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// EditMessage replaces the content of one of the caller's messages
func (c *Client) EditMessage(ctx context.Context, messageId, content string) error {
	return c.post(ctx, "/msg/edit", map[string]string{"message_id": messageId, "content": content}, nil)
}

// DeleteMessage soft-deletes one of the caller's messages
func (c *Client) DeleteMessage(ctx context.Context, messageId string) error {
	return c.post(ctx, "/msg/delete", map[string]string{"message_id": messageId}, nil)
}

// PinMessage sets or clears a message's pinned flag
func (c *Client) PinMessage(ctx context.Context, messageId string, isPinned bool) error {
	return c.post(ctx, "/msg/pin", map[string]interface{}{"message_id": messageId, "is_pinned": isPinned}, nil)
}

// ToggleReaction adds the caller's emoji reaction, or removes it if present. It reports whether the reaction now exists.
func (c *Client) ToggleReaction(ctx context.Context, messageId, emoji string) (bool, error) {
	var result struct {
		Added bool `json:"added"`
	}
	if err := c.post(ctx, "/reaction/toggle", map[string]string{"message_id": messageId, "emoji": emoji}, &result); err != nil {
		return false, err
	}
	return result.Added, nil
}

// SetTyping reports whether the caller is typing in a conversation
func (c *Client) SetTyping(ctx context.Context, conversationId string, isTyping bool) error {
	return c.post(ctx, "/typing/update", map[string]interface{}{"conversation_id": conversationId, "is_typing": isTyping}, nil)
}

// ListTypists lists the users currently typing in a conversation
func (c *Client) ListTypists(ctx context.Context, conversationId string) ([]*UserInfo, error) {
	var result []*UserInfo
	if err := c.get(ctx, "/typing/list", map[string]string{"conversation_id": conversationId}, &result); err != nil {
		return nil, err
	}
	return result, nil
}
