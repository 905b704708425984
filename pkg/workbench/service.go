package workbench

import (
	"context"
	"net/http"
	"net/url"
)

// AssistantServiceClient wraps the assistant-service registration
// endpoints. Unlike the per-call resource clients, it is a long-lived
// object: an assistant service typically refreshes its registration on an
// interval for its whole lifetime. Call Close when done to release idle
// connections.
type AssistantServiceClient struct {
	client *client
}

// UpdateRegistrationURL refreshes the registration's callback URL and
// online window.
func (c *AssistantServiceClient) UpdateRegistrationURL(ctx context.Context, assistantServiceID string, update UpdateAssistantServiceRegistrationURL) error {
	return c.client.do(ctx, http.MethodPut, "/assistant-service-registrations/"+assistantServiceID, nil, update, nil)
}

// AssistantServices lists the assistant services visible to the given
// users.
func (c *AssistantServiceClient) AssistantServices(ctx context.Context, userIDs []string) (*AssistantServiceInfoList, error) {
	query := url.Values{}
	for _, userID := range userIDs {
		query.Add("user_id", userID)
	}

	var list AssistantServiceInfoList
	if err := c.client.do(ctx, http.MethodGet, "/assistant-services", query, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Close releases idle connections held by the client's transport.
func (c *AssistantServiceClient) Close() error {
	closeIdleConnections(c.client.httpClient.Transport)
	return nil
}
