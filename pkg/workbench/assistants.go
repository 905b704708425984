package workbench

import (
	"context"
	"net/http"
)

// AssistantsClient wraps the assistant-collection endpoints.
type AssistantsClient struct {
	client *client
}

// List returns the assistants visible to the caller.
func (c *AssistantsClient) List(ctx context.Context) (*AssistantList, error) {
	var list AssistantList
	if err := c.client.do(ctx, http.MethodGet, "/assistants", nil, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Create creates a new assistant instance.
func (c *AssistantsClient) Create(ctx context.Context, newAssistant NewAssistant) (*Assistant, error) {
	var assistant Assistant
	if err := c.client.do(ctx, http.MethodPost, "/assistants", nil, newAssistant, &assistant); err != nil {
		return nil, err
	}
	return &assistant, nil
}

// Delete deletes an assistant by ID. A 404 response is treated as success.
func (c *AssistantsClient) Delete(ctx context.Context, assistantID string) error {
	err := c.client.do(ctx, http.MethodDelete, "/assistants/"+assistantID, nil, nil, nil)
	if IsNotFound(err) {
		return nil
	}
	return err
}
