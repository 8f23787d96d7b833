package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/jumpvector/core/journal"
	"github.com/kilianp07/jumpvector/core/jumpvector"
	"github.com/kilianp07/jumpvector/core/metrics"
	"github.com/kilianp07/jumpvector/core/operator"
	"github.com/kilianp07/jumpvector/infra/mqtt"
)

// Default MQTT topics used when the configuration leaves them empty.
const (
	DefaultCommandTopic = "jumpvector/command"
	DefaultReplyTopic   = "jumpvector/reply"
)

type Config struct {
	MQTT    mqtt.Config            `json:"mqtt"`
	Table   jumpvector.TableConfig `json:"table"`
	Journal journal.Config         `json:"journal"`
	Metrics metrics.Config         `json:"metrics"`
	API     APIConfig              `json:"api"`
	Sentry  SentryConfig           `json:"sentry"`
}

// Load reads the YAML, JSON or TOML file at path, applies K_ prefixed environment
// overrides (K_MQTT__BROKER sets mqtt.broker), then defaults and validation.
// An empty path loads the environment and defaults only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = tomlParser{}
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section's unset fields.
func (c *Config) SetDefaults() {
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "jumpvector"
	}
	if c.MQTT.CommandTopic == "" {
		c.MQTT.CommandTopic = DefaultCommandTopic
	}
	if c.MQTT.ReplyTopic == "" {
		c.MQTT.ReplyTopic = DefaultReplyTopic
	}
	c.Journal.SetDefaults()
	c.API.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if c.MQTT.CommandTopic == c.MQTT.ReplyTopic {
		return fmt.Errorf("mqtt: command_topic and reply_topic must differ")
	}
	if _, err := operator.ParseFormat(c.MQTT.Encoding); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if c.Table.Capacity < 0 {
		return fmt.Errorf("table: negative capacity %d", c.Table.Capacity)
	}
	for i, h := range c.Table.Handlers {
		if h.Code > jumpvector.MaxCode {
			return fmt.Errorf("table: handler %d: code %d out of range", i, h.Code)
		}
		if h.Type == "" {
			return fmt.Errorf("table: handler %d: type is required", i)
		}
	}
	if err := c.Journal.Validate(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if c.Sentry.TracesSampleRate < 0 || c.Sentry.TracesSampleRate > 1 {
		return fmt.Errorf("sentry: traces_sample_rate must be within [0,1]")
	}
	return nil
}
