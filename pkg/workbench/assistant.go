package workbench

import (
	"context"
	"net/http"
)

// AssistantClient wraps the endpoints scoped to a single assistant.
type AssistantClient struct {
	client      *client
	assistantID string
}

func (c *AssistantClient) path(suffix string) string {
	return "/assistants/" + c.assistantID + suffix
}

// Get returns the assistant.
func (c *AssistantClient) Get(ctx context.Context) (*Assistant, error) {
	var assistant Assistant
	if err := c.client.do(ctx, http.MethodGet, c.path(""), nil, nil, &assistant); err != nil {
		return nil, err
	}
	return &assistant, nil
}

// Delete deletes the assistant. A 404 response is treated as success.
func (c *AssistantClient) Delete(ctx context.Context) error {
	err := c.client.do(ctx, http.MethodDelete, c.path(""), nil, nil, nil)
	if IsNotFound(err) {
		return nil
	}
	return err
}

// Config returns the assistant's configuration with its schemas.
func (c *AssistantClient) Config(ctx context.Context) (*ConfigResponse, error) {
	var config ConfigResponse
	if err := c.client.do(ctx, http.MethodGet, c.path("/config"), nil, nil, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// UpdateConfig replaces the assistant's configuration.
func (c *AssistantClient) UpdateConfig(ctx context.Context, config ConfigPutRequest) (*ConfigResponse, error) {
	var updated ConfigResponse
	if err := c.client.do(ctx, http.MethodPut, c.path("/config"), nil, config, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
