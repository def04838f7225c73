package node

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"styx.dev/ledger/crypto"
	"styx.dev/ledger/protocol"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.HashSuite != crypto.SuiteSHA256 {
		t.Fatalf("default suite = %q", cfg.HashSuite)
	}
	if cfg.SiblingOrder != SiblingOrderSorted {
		t.Fatalf("default order = %q", cfg.SiblingOrder)
	}
}

func TestValidateConfigRejections(t *testing.T) {
	cases := []struct {
		name string
		mut  func(c *Config)
	}{
		{"empty_datadir", func(c *Config) { c.DataDir = "  " }},
		{"bad_log_level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad_suite", func(c *Config) { c.HashSuite = "md5" }},
		{"bad_order", func(c *Config) { c.SiblingOrder = "leftmost" }},
		{"bad_table_version", func(c *Config) { c.TableVersion = 2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mut(&cfg)
			if err := ValidateConfig(cfg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestConfigJSONRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/var/lib/styx"
	cfg.LogLevel = "debug"
	cfg.HashSuite = crypto.SuiteBLAKE2b
	cfg.SiblingOrder = SiblingOrderFixed

	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Config
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != cfg {
		t.Fatalf("got %+v want %+v", back, cfg)
	}
	if err := ValidateConfig(back); err != nil {
		t.Fatalf("round-tripped config invalid: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	// Partial file: unnamed fields keep their defaults.
	body := `{"data_dir": "` + dir + `", "sibling_order": "fixed"}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DataDir != dir || cfg.SiblingOrder != SiblingOrderFixed {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.HashSuite != crypto.SuiteSHA256 {
		t.Fatalf("defaults not preserved: %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	if err := os.WriteFile(path, []byte(`{"hash_suite": "md5"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected validation error from loaded file")
	}
}

func TestResolveOrder(t *testing.T) {
	if o, err := ResolveOrder(SiblingOrderFixed); err != nil || o != protocol.OrderFixed {
		t.Fatalf("fixed: o=%d err=%v", o, err)
	}
	if o, err := ResolveOrder(SiblingOrderSorted); err != nil || o != protocol.OrderSorted {
		t.Fatalf("sorted: o=%d err=%v", o, err)
	}
	if _, err := ResolveOrder("SORTED"); err == nil {
		t.Fatalf("expected error for unnormalized order string")
	}
}
