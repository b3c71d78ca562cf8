package config

const (
	defaultConfigPath          = "~/.config/filmsuite/config.toml"
	projectConfigName          = "filmsuite.toml"
	envFileName                = ".env"
	defaultDataDir             = "~/.local/share/filmsuite"
	defaultTranscriptionURL    = "https://api.assemblyai.com"
	defaultPollIntervalSeconds = 3
	defaultLLMBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel            = "anthropic/claude-3.5-sonnet"
	defaultLLMMaxTokens        = 2048
	defaultLLMReferer          = "https://github.com/filmsuite/filmsuite"
	defaultLLMTitle            = "Documentary Film Suite"
	defaultLLMTimeoutSeconds   = 300
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultVideoCodec          = "libx264"
	defaultAudioCodec          = "aac"
	defaultJournalName         = "journal.db"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Transcription: Transcription{
			BaseURL:             defaultTranscriptionURL,
			PollIntervalSeconds: defaultPollIntervalSeconds,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			MaxTokens:      defaultLLMMaxTokens,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Clips: Clips{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			VideoCodec:    defaultVideoCodec,
			AudioCodec:    defaultAudioCodec,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
