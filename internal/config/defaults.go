package config

const (
	defaultDataDir           = "~/.local/share/writegeist"
	defaultLogDir            = "~/.local/share/writegeist/logs"
	defaultAPIBind           = "127.0.0.1:8000"
	defaultLLMBaseURL        = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel          = "gpt-4o-mini"
	defaultLLMTimeoutSeconds = 60
	defaultLLMMaxRetries     = 2
	defaultNotifyTimeout     = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			MaxRetries:     defaultLLMMaxRetries,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Ingest:         true,
			Proposals:      true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
