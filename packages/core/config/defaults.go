package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:        30000, // 30 seconds
		MaxRedirects:   20,
		UserAgent:      "pagefetch/1.0",
		DefaultCharset: "UTF-8",
		Output:         "log",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Timeout == defaults.Timeout &&
		c.MaxRedirects == defaults.MaxRedirects &&
		c.UserAgent == defaults.UserAgent &&
		c.Proxy == defaults.Proxy &&
		len(c.Headers) == 0 &&
		c.DefaultCharset == defaults.DefaultCharset &&
		c.LineBreaks == nil &&
		c.Output == defaults.Output &&
		c.LogLevel == defaults.LogLevel &&
		c.LogFormat == defaults.LogFormat &&
		c.Archive == defaults.Archive &&
		c.Verbose == nil &&
		c.NoColor == nil
}
