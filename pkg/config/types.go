package config

// Config represents the persistent workbench configuration stored as
// config.toml in the .workbench/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version  int            `toml:"version"`
	Service  ServiceConfig  `toml:"service"`
	Identity IdentityConfig `toml:"identity"`
	Mock     MockConfig     `toml:"mock"`
}

// ServiceConfig holds settings for connecting to the workbench service.
type ServiceConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
}

// IdentityConfig holds the credentials commands attach to requests.
// AssistantServiceID and APIKey authenticate an assistant service; AssistantID
// scopes requests to a single assistant instance; UserToken is a bearer token
// for user-principal requests.
type IdentityConfig struct {
	AssistantServiceID string `toml:"assistant_service_id,omitempty"`
	APIKey             string `toml:"api_key,omitempty"`
	AssistantID        string `toml:"assistant_id,omitempty"`
	UserToken          string `toml:"user_token,omitempty"`
}

// MockConfig holds settings for the in-memory mock service.
type MockConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"service.base_url": {
		get: func(c *Config) string { return c.Service.BaseURL },
		set: func(c *Config, v string) error { c.Service.BaseURL = v; return nil },
	},
	"identity.assistant_service_id": {
		get: func(c *Config) string { return c.Identity.AssistantServiceID },
		set: func(c *Config, v string) error { c.Identity.AssistantServiceID = v; return nil },
	},
	"identity.api_key": {
		get: func(c *Config) string { return c.Identity.APIKey },
		set: func(c *Config, v string) error { c.Identity.APIKey = v; return nil },
	},
	"identity.assistant_id": {
		get: func(c *Config) string { return c.Identity.AssistantID },
		set: func(c *Config, v string) error { c.Identity.AssistantID = v; return nil },
	},
	"identity.user_token": {
		get: func(c *Config) string { return c.Identity.UserToken },
		set: func(c *Config, v string) error { c.Identity.UserToken = v; return nil },
	},
	"mock.listen": {
		get: func(c *Config) string { return c.Mock.Listen },
		set: func(c *Config, v string) error { c.Mock.Listen = v; return nil },
	},
}
