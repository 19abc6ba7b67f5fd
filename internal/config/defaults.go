package config

const (
	defaultConfigPath            = "~/.config/clipdeck/config.toml"
	defaultStateDir              = "~/.local/share/clipdeck"
	defaultLogDir                = "~/.local/share/clipdeck/logs"
	defaultUploadURL             = "https://www.googleapis.com/upload/youtube/v3/videos"
	defaultAPIURL                = "https://www.googleapis.com/youtube/v3"
	defaultTransportMode         = TransportResumable
	defaultChunkSizeKiB          = 256
	defaultRequestTimeoutSeconds = 120
	defaultUploadTimeoutSeconds  = 3600
	defaultCategoryID            = "22"
	defaultModerationURL         = "http://localhost:5000"
	defaultModerationTimeout     = 300
	defaultMinLeadMinutes        = 15
	defaultDefaultLeadMinutes    = 30
	defaultHistoryFile           = "history.db"
	defaultNotifyTimeout         = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Transport modes accepted by youtube.transport_mode.
const (
	TransportResumable = "resumable"
	TransportMultipart = "multipart"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		YouTube: YouTube{
			UploadURL:             defaultUploadURL,
			APIURL:                defaultAPIURL,
			TransportMode:         defaultTransportMode,
			ChunkSizeKiB:          defaultChunkSizeKiB,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			UploadTimeoutSeconds:  defaultUploadTimeoutSeconds,
			CategoryID:            defaultCategoryID,
		},
		Moderation: Moderation{
			Enabled:        true,
			URL:            defaultModerationURL,
			TimeoutSeconds: defaultModerationTimeout,
		},
		Schedule: Schedule{
			MinLeadMinutes:     defaultMinLeadMinutes,
			DefaultLeadMinutes: defaultDefaultLeadMinutes,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Success:        true,
			Flagged:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
