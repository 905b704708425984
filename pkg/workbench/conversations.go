package workbench

import (
	"context"
	"net/http"
)

// ConversationsClient wraps the conversation-collection endpoints.
type ConversationsClient struct {
	client *client
}

// List returns the conversations visible to the caller.
func (c *ConversationsClient) List(ctx context.Context) (*ConversationList, error) {
	var list ConversationList
	if err := c.client.do(ctx, http.MethodGet, "/conversations", nil, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Create creates a new conversation owned by the caller.
func (c *ConversationsClient) Create(ctx context.Context, newConversation NewConversation) (*Conversation, error) {
	var conversation Conversation
	if err := c.client.do(ctx, http.MethodPost, "/conversations", nil, newConversation, &conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// CreateWithOwner creates a conversation on behalf of the given owner.
func (c *ConversationsClient) CreateWithOwner(ctx context.Context, newConversation NewConversation, ownerID string) (*Conversation, error) {
	var conversation Conversation
	if err := c.client.do(ctx, http.MethodPost, "/conversations/"+ownerID, nil, newConversation, &conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// CreateShareWithOwner shares a conversation on behalf of the given owner.
func (c *ConversationsClient) CreateShareWithOwner(ctx context.Context, newShare NewConversationShare, ownerID string) (*ConversationShare, error) {
	var share ConversationShare
	if err := c.client.do(ctx, http.MethodPost, "/conversation-shares/"+ownerID, nil, newShare, &share); err != nil {
		return nil, err
	}
	return &share, nil
}

// Delete deletes a conversation by ID. A 404 response is treated as
// success: the conversation is already gone.
func (c *ConversationsClient) Delete(ctx context.Context, conversationID string) error {
	err := c.client.do(ctx, http.MethodDelete, "/conversations/"+conversationID, nil, nil, nil)
	if IsNotFound(err) {
		return nil
	}
	return err
}
