package config

// Config source labels, recorded per field in Sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Operating mode labels.
const (
	ModeDesktop = "desktop"
	ModeDev     = "dev"
)

// Defaults applied when no other source provides a value.
const (
	DefaultPort         = 46123
	DefaultRemoteOrigin = "https://worldmonitor.app"
	DefaultResourceDir  = "./resources"
	DefaultMode         = ModeDesktop
)

// Config is the gateway's runtime configuration. It is set once at process
// start and never mutated afterwards.
type Config struct {
	// Port is the loopback port the gateway listens on.
	Port int `yaml:"port"`

	// RemoteOrigin is the cloud base URL used for pass-through and fallback.
	RemoteOrigin string `yaml:"remoteOrigin"`

	// ResourceDir is the root directory containing the api/ handler folder.
	ResourceDir string `yaml:"resourceDir"`

	// Mode is the operating mode label reported by introspection endpoints.
	Mode string `yaml:"mode"`

	// LogLevel is the minimum log level ("debug", "info", "warn", "error").
	LogLevel string `yaml:"logLevel"`

	// LogFormat is the log output format ("text" or "json").
	LogFormat string `yaml:"logFormat"`

	// Sources tracks where each field's value came from, for diagnostics.
	Sources map[string]string `yaml:"-"`
}

// NewDefault returns a Config populated with defaults, with every field's
// source recorded as "default".
func NewDefault() *Config {
	return &Config{
		Port:         DefaultPort,
		RemoteOrigin: DefaultRemoteOrigin,
		ResourceDir:  DefaultResourceDir,
		Mode:         DefaultMode,
		LogLevel:     "info",
		LogFormat:    "text",
		Sources: map[string]string{
			"port":         SourceDefault,
			"remoteOrigin": SourceDefault,
			"resourceDir":  SourceDefault,
			"mode":         SourceDefault,
			"logLevel":     SourceDefault,
			"logFormat":    SourceDefault,
		},
	}
}
