// Package config loads phishguard service configuration from defaults,
// an optional YAML file and PHISHGUARD_* environment variables, in that
// order of precedence.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mcuadros/go-defaults"
)

const (
	// defaultConfigFilePath is used when no config file location is provided
	defaultConfigFilePath = "./config/.config.yaml"
	// envPrefix is the prefix for environment variable overrides
	envPrefix = "PHISHGUARD_"
)

// Config holds the full phishguard service configuration
type Config struct {
	// Server holds HTTP server settings
	Server Server `koanf:"server" json:"server"`
	// Classifier holds LLM classifier settings
	Classifier Classifier `koanf:"classifier" json:"classifier"`
	// Analysis holds heuristic analysis settings
	Analysis Analysis `koanf:"analysis" json:"analysis"`
	// Blocklist holds phishing domain feed settings
	Blocklist Blocklist `koanf:"blocklist" json:"blocklist"`
	// Notify holds Slack alerting settings
	Notify Notify `koanf:"notify" json:"notify"`
}

// Server holds HTTP server settings
type Server struct {
	// Listen is the address the HTTP server binds to
	Listen string `koanf:"listen" json:"listen" default:":8080"`
	// ReadTimeout is the maximum duration for reading an entire request
	ReadTimeout time.Duration `koanf:"readtimeout" json:"readtimeout" default:"30s"`
	// WriteTimeout is the maximum duration before timing out response writes
	WriteTimeout time.Duration `koanf:"writetimeout" json:"writetimeout" default:"60s"`
	// ShutdownGracePeriod is how long in-flight requests get to finish on shutdown
	ShutdownGracePeriod time.Duration `koanf:"shutdowngraceperiod" json:"shutdowngraceperiod" default:"10s"`
	// MaxBodySize caps the request body size in bytes
	MaxBodySize int64 `koanf:"maxbodysize" json:"maxbodysize" default:"1048576"`
	// Debug enables debug level logging
	Debug bool `koanf:"debug" json:"debug" default:"false"`
	// Pretty enables human readable console logging
	Pretty bool `koanf:"pretty" json:"pretty" default:"false"`
}

// Classifier holds LLM classifier settings
type Classifier struct {
	// APIKey is the Gemini API key
	APIKey string `koanf:"apikey" json:"apikey" sensitive:"true"`
	// Model is the Gemini model used for classification
	Model string `koanf:"model" json:"model" default:"gemini-2.5-pro"`
	// TargetLatency is the end to end latency objective for one classification
	TargetLatency time.Duration `koanf:"targetlatency" json:"targetlatency" default:"35s"`
	// MinBudget is the floor for the latency budget handed to the classifier
	MinBudget time.Duration `koanf:"minbudget" json:"minbudget" default:"30s"`
	// MaxRetries is the number of retries after a failed classifier call
	MaxRetries int `koanf:"maxretries" json:"maxretries" default:"1"`
}

// Analysis holds heuristic analysis settings
type Analysis struct {
	// URLBudget bounds the time spent on network checks per request
	URLBudget time.Duration `koanf:"urlbudget" json:"urlbudget" default:"300ms"`
	// MaxURLs caps how many distinct URLs are analyzed per email
	MaxURLs int `koanf:"maxurls" json:"maxurls" default:"10"`
	// DNSServer overrides the DNS server used for authentication record lookups
	DNSServer string `koanf:"dnsserver" json:"dnsserver"`
	// Brands is the list of brand names watched for impersonation
	Brands []string `koanf:"brands" json:"brands"`
}

// Blocklist holds phishing domain feed settings
type Blocklist struct {
	// FeedConfig is the path to the JSON feed definition file; empty disables the blocklist
	FeedConfig string `koanf:"feedconfig" json:"feedconfig"`
	// StorageDir is where raw feed downloads are cached
	StorageDir string `koanf:"storagedir" json:"storagedir" default:"data/blocklist"`
	// AutoHydrate downloads the feeds in the background at startup
	AutoHydrate bool `koanf:"autohydrate" json:"autohydrate" default:"true"`
	// RequestTimeout bounds a single feed download
	RequestTimeout time.Duration `koanf:"requesttimeout" json:"requesttimeout" default:"90s"`
}

// Notify holds Slack alerting settings
type Notify struct {
	// SlackWebhookURL receives phishing verdict alerts; empty disables alerting
	SlackWebhookURL string `koanf:"slackwebhookurl" json:"slackwebhookurl" sensitive:"true"`
	// RequestTimeout bounds a single webhook delivery
	RequestTimeout time.Duration `koanf:"requesttimeout" json:"requesttimeout" default:"10s"`
}

// Load reads configuration from defaults, the YAML file at cfgFile when it
// exists, and PHISHGUARD_* environment variables
func Load(cfgFile *string) (*Config, error) {
	k := koanf.New(".")

	if cfgFile == nil || *cfgFile == "" {
		path := defaultConfigFilePath
		cfgFile = &path
	}

	conf := &Config{}
	defaults.SetDefaults(conf)

	if _, err := os.Stat(*cfgFile); err == nil {
		if err := k.Load(file.Provider(*cfgFile), yaml.Parser()); err != nil {
			return nil, ErrConfigFileRead
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyToPath), nil); err != nil {
		return nil, ErrConfigFileRead
	}

	if err := k.Unmarshal("", conf); err != nil {
		return nil, ErrConfigUnmarshal
	}

	return conf, nil
}

// envKeyToPath maps PHISHGUARD_SERVER_LISTEN to server.listen
func envKeyToPath(key string) string {
	trimmed := strings.TrimPrefix(key, envPrefix)

	return strings.ReplaceAll(strings.ToLower(trimmed), "_", ".")
}
