package config

import "time"

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output, file string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
		file:   file,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, dsn string, autoMigrate bool) *Repository {
	return &Repository{
		backend:     backend,
		dsn:         dsn,
		autoMigrate: autoMigrate,
	}
}

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(provider, geminiProject, openaiAPIKey string) *LLM {
	return &LLM{
		provider:       provider,
		geminiProject:  geminiProject,
		geminiLocation: "us-central1",
		openaiAPIKey:   openaiAPIKey,
	}
}

// NewAppForTest creates an App config for testing purposes
func NewAppForTest(configPath string, historyLimit int, llmTimeout time.Duration) *App {
	return &App{
		configPath:   configPath,
		historyLimit: historyLimit,
		llmTimeout:   llmTimeout,
	}
}

var ParseLogLevel = parseLogLevel
