package config

const (
	defaultServiceBaseURL = "http://localhost:3000"

	defaultAssistantServiceID = "local-assistant.local"

	defaultMockListen = ":3000"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Service: ServiceConfig{
			BaseURL: defaultServiceBaseURL,
		},
		Identity: IdentityConfig{
			AssistantServiceID: defaultAssistantServiceID,
		},
		Mock: MockConfig{
			Listen: defaultMockListen,
		},
	}
}
