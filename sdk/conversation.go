package sdk

import "context"

type conversationIdResult struct {
	ConversationId string `json:"conversation_id"`
}

// CreateConversation creates a group when isGroup is set, otherwise finds or creates the direct
// conversation with the single other participant
func (c *Client) CreateConversation(ctx context.Context, participantIds []string, isGroup bool, name string) (string, error) {
	var result conversationIdResult
	req := map[string]interface{}{"participant_ids": participantIds, "is_group": isGroup, "name": name}
	if err := c.post(ctx, "/conversation/create", req, &result); err != nil {
		return "", err
	}
	return result.ConversationId, nil
}

// CreateOrGetDirect returns the direct conversation with userId, creating it on first use
func (c *Client) CreateOrGetDirect(ctx context.Context, userId string) (string, error) {
	var result conversationIdResult
	if err := c.post(ctx, "/conversation/direct", map[string]string{"user_id": userId}, &result); err != nil {
		return "", err
	}
	return result.ConversationId, nil
}

// CreateGroup creates a group administered by the caller
func (c *Client) CreateGroup(ctx context.Context, name string, participantIds []string) (string, error) {
	var result conversationIdResult
	req := map[string]interface{}{"name": name, "participant_ids": participantIds}
	if err := c.post(ctx, "/conversation/group", req, &result); err != nil {
		return "", err
	}
	return result.ConversationId, nil
}

// ListConversations lists the caller's conversations, most recent activity first
func (c *Client) ListConversations(ctx context.Context) ([]*Conversation, error) {
	var result []*Conversation
	if err := c.get(ctx, "/conversation/list", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetConversation gets one conversation the caller belongs to
func (c *Client) GetConversation(ctx context.Context, conversationId string) (*Conversation, error) {
	var result *Conversation
	if err := c.get(ctx, "/conversation/info", map[string]string{"conversation_id": conversationId}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListMembers lists the users of a conversation in join order
func (c *Client) ListMembers(ctx context.Context, conversationId string) ([]*UserInfo, error) {
	var result []*UserInfo
	if err := c.get(ctx, "/conversation/members", map[string]string{"conversation_id": conversationId}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkAsRead moves the caller's read marker to the newest message
func (c *Client) MarkAsRead(ctx context.Context, conversationId string) error {
	return c.post(ctx, "/conversation/mark_read", map[string]string{"conversation_id": conversationId}, nil)
}

// DeleteConversation deletes a conversation with all its messages, reactions and members
func (c *Client) DeleteConversation(ctx context.Context, conversationId string) error {
	return c.post(ctx, "/conversation/delete", map[string]string{"conversation_id": conversationId}, nil)
}

// AddGroupMember adds userId to a group the caller administers
func (c *Client) AddGroupMember(ctx context.Context, conversationId, userId string) error {
	return c.post(ctx, "/conversation/add_member", map[string]string{"conversation_id": conversationId, "user_id": userId}, nil)
}
