package config

// APIConfig defines the HTTP API listener.
type APIConfig struct {
	// Addr is the listen address; empty disables the API.
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on every request.
	Token string `json:"token"`
	// ReadTimeoutSeconds bounds reading a request.
	ReadTimeoutSeconds int `json:"read_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.ReadTimeoutSeconds <= 0 {
		c.ReadTimeoutSeconds = 5
	}
}
