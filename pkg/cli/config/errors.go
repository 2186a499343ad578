package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound  = goerr.New("configuration file not found")
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrUnknownBackend  = goerr.New("unknown repository backend")
	ErrUnknownProvider = goerr.New("unknown LLM provider")
	ErrMissingOption   = goerr.New("required option is missing")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	BackendKey    = "backend"
	ProviderKey   = "provider"
	OptionKey     = "option"
)
