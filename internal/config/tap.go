package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const SupportedSchema = "v1"

// TapSpec describes one tap: which driver and topics to read, how the
// stream is bounded, and where the kafka client config lives.
type TapSpec struct {
	SchemaVersion string `yaml:"schema_version"`

	Driver      string `yaml:"driver"`       // e.g. "sarama"
	KafkaConfig string `yaml:"kafka_config"` // path, resolved relative to this file

	// Topics overrides the topic list from the kafka config when set.
	Topics []string `yaml:"topics"`

	// FromEnd seeks every partition to its newest offset before streaming,
	// flushed with a zero-timeout poll.
	FromEnd bool `yaml:"from_end"`

	DeadlineMS     int `yaml:"deadline_ms"`      // 0 = unbounded
	PollIntervalMS int `yaml:"poll_interval_ms"` // 0 = stream default

	MetricsPort int `yaml:"metrics_port"` // 0 = no metrics endpoint
}

// LoadTapSpec parses a tap YAML, validates schema_version, and returns the
// parsed spec plus an absolute path to the kafka config (if set).
func LoadTapSpec(path string) (TapSpec, string, error) {
	var spec TapSpec
	raw, err := os.ReadFile(path)
	if err != nil {
		return spec, "", err
	}
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return spec, "", err
	}
	if spec.SchemaVersion == "" {
		spec.SchemaVersion = SupportedSchema
	}
	if spec.SchemaVersion != SupportedSchema {
		return spec, "", fmt.Errorf("tap schema_version %q not supported (want %q)", spec.SchemaVersion, SupportedSchema)
	}
	if spec.Driver == "" {
		spec.Driver = "sarama"
	}
	confPath := spec.KafkaConfig
	if confPath != "" && !filepath.IsAbs(confPath) {
		confPath = filepath.Join(filepath.Dir(path), confPath)
	}
	return spec, confPath, nil
}
