package kafka

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Brokers   []string `koanf:"brokers"`
	Topics    []string `koanf:"topics"`
	ClientID  string   `koanf:"client_id"`
	StartFrom string   `koanf:"start_from"` // oldest|newest (default newest)
	Version   string   `koanf:"version"`
	TLSEn     bool     `koanf:"tls_enabled"`
	SASLUser  string   `koanf:"sasl_user"`
	SASLPass  string   `koanf:"sasl_pass"`

	// MaxPollRecords caps how many records one Poll call may return.
	MaxPollRecords int `koanf:"max_poll_records"`
	// ChannelBuffer sizes the fan-in channel between partition consumers
	// and Poll.
	ChannelBuffer int `koanf:"channel_buffer"`

	// RequiredAcks applies to the producer side: 0, 1 or -1.
	RequiredAcks int16 `koanf:"required_acks"`
}

// ---------------------------------------------------------------------------
// Loaders
// ---------------------------------------------------------------------------

// LoadConfig merges YAML (if present) with env-vars
// (prefix `KAFKATAP_KAFKA__`, delimiter `__`).
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	// schema version check (only when YAML is present)
	sv := k.String("schema_version")
	if sv != "" && sv != "v1" {
		return Config{}, fmt.Errorf("kafka schema_version %q not supported (want v1)", sv)
	}

	// the transform strips the prefix and lowercases so KAFKATAP_KAFKA__SASL_USER
	// lands on the sasl_user koanf tag
	_ = k.Load(env.Provider("KAFKATAP_KAFKA__", "__", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "KAFKATAP_KAFKA__"))
	}), nil)

	return unmarshal(k)
}

// FromMap translates a plain property map into a Config, the same way the
// file loader does. Useful when configuration arrives already parsed.
func FromMap(m map[string]any) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return Config{}, err
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func applyDefaults(c *Config) {
	if c.ClientID == "" {
		c.ClientID = "kafkatap"
	}
	if c.StartFrom == "" {
		c.StartFrom = "newest"
	}
	if c.MaxPollRecords == 0 {
		c.MaxPollRecords = 500
	}
	if c.ChannelBuffer == 0 {
		c.ChannelBuffer = 256
	}
	if c.RequiredAcks == 0 {
		c.RequiredAcks = 1
	}
}
