package v1

import "io"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	configFile string
	stores     []string
	categories string
	scope      string
	logOutput  io.Writer
	logLevel   string
}

// WithConfigFile loads settings from path instead of ./mnemonic.yaml.
func WithConfigFile(path string) Option {
	return func(c *clientConfig) {
		c.configFile = path
	}
}

// WithStores overrides the configured store files. Files whose name starts
// with "global_" form the global scope.
func WithStores(files ...string) Option {
	return func(c *clientConfig) {
		c.stores = files
	}
}

// WithErrorCategories overrides the error categories file.
func WithErrorCategories(path string) Option {
	return func(c *clientConfig) {
		c.categories = path
	}
}

// WithScope forces a specific scope (global or project).
func WithScope(scope string) Option {
	return func(c *clientConfig) {
		c.scope = scope
	}
}

// WithLogOutput sends structured logs to w at the given level. Logs are
// discarded by default.
func WithLogOutput(w io.Writer, level string) Option {
	return func(c *clientConfig) {
		c.logOutput = w
		c.logLevel = level
	}
}
