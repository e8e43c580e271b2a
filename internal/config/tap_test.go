package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTapSpec_ResolvesRelativeKafkaConfigAndSchema(t *testing.T) {
	dir := t.TempDir()
	tapYml := []byte(`schema_version: v1
driver: sarama
kafka_config: kafka.yml
topics: [orders]
deadline_ms: 30000
`)
	if err := os.WriteFile(filepath.Join(dir, "tap.yml"), tapYml, 0o644); err != nil {
		t.Fatalf("write tap spec: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "kafka.yml"), []byte("schema_version: v1\n"), 0o644); err != nil {
		t.Fatalf("write kafka cfg: %v", err)
	}

	spec, abs, err := LoadTapSpec(filepath.Join(dir, "tap.yml"))
	if err != nil {
		t.Fatalf("LoadTapSpec: %v", err)
	}
	if spec.SchemaVersion != SupportedSchema {
		t.Fatalf("want schema %s, got %s", SupportedSchema, spec.SchemaVersion)
	}
	if spec.DeadlineMS != 30000 {
		t.Fatalf("deadline_ms not loaded: %d", spec.DeadlineMS)
	}
	if abs == "" || !filepath.IsAbs(abs) {
		t.Fatalf("want absolute kafka config path, got %q", abs)
	}
}

func TestLoadTapSpec_InvalidSchema(t *testing.T) {
	dir := t.TempDir()
	tapYml := []byte(`schema_version: v999
driver: sarama
kafka_config: kafka.yml
`)
	if err := os.WriteFile(filepath.Join(dir, "tap.yml"), tapYml, 0o644); err != nil {
		t.Fatalf("write tap spec: %v", err)
	}
	if _, _, err := LoadTapSpec(filepath.Join(dir, "tap.yml")); err == nil {
		t.Fatal("expected error for invalid schema_version")
	}
}

func TestLoadTapSpec_DriverDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tap.yml"), []byte("topics: [a]\n"), 0o644); err != nil {
		t.Fatalf("write tap spec: %v", err)
	}

	spec, _, err := LoadTapSpec(filepath.Join(dir, "tap.yml"))
	if err != nil {
		t.Fatalf("LoadTapSpec: %v", err)
	}
	if spec.Driver != "sarama" {
		t.Fatalf("driver default not applied: %q", spec.Driver)
	}
}
