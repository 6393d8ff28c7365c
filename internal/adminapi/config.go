package adminapi

import "time"

// Config configures the admin introspection HTTP server. There is no
// JWT/auth layer: the admin API is meant to be bound
// to a loopback or operator-only interface, not exposed publicly.
type Config struct {
	// Port is the HTTP port the admin server listens on.
	// Default: 9091
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out a response write.
	// Default: 10s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next keep-alive request.
	// Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// CommandTimeout bounds how long a handler waits for Server.Run to
	// service an AdminCommand before giving up with a 503. The dispatch
	// loop only blocks briefly between messages, so this can be short.
	// Default: 2s
	CommandTimeout time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 9091
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.CommandTimeout == 0 {
		c.CommandTimeout = 2 * time.Second
	}
}
