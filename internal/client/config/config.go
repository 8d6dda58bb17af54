package config

import "time"

// Config holds runtime settings for hrctl.
//
// SessionFile is where login stores the session token; empty means
// "session" in the per-user hrkeeper config directory.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	SessionFile    string
}

// Flags lists the global command-line flags LoadConfig consumes. Everything
// else on the command line belongs to the hrctl command.
var Flags = []string{"-a", "-t", "-s", "-c", "-config", "--config"}

// LoadDefaults populates c with defaults suitable for a local server.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 30 * time.Second
	c.SessionFile = ""
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config, then flags. Later sources take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
