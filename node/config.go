package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"styx.dev/ledger/crypto"
	"styx.dev/ledger/protocol"
)

type Config struct {
	DataDir      string `json:"data_dir"`
	LogLevel     string `json:"log_level"`
	HashSuite    string `json:"hash_suite"`
	SiblingOrder string `json:"sibling_order"`
	TableVersion uint32 `json:"table_version"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

const (
	SiblingOrderFixed  = "fixed"
	SiblingOrderSorted = "sorted"
)

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".styx"
	}
	return filepath.Join(home, ".styx")
}

func DefaultConfig() Config {
	return Config{
		DataDir:      DefaultDataDir(),
		LogLevel:     "info",
		HashSuite:    crypto.SuiteSHA256,
		SiblingOrder: SiblingOrderSorted,
		TableVersion: protocol.TableVersionV1,
	}
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if _, err := crypto.NewSuite(cfg.HashSuite); err != nil {
		return fmt.Errorf("invalid hash_suite %q", cfg.HashSuite)
	}
	if _, err := ResolveOrder(cfg.SiblingOrder); err != nil {
		return err
	}
	if cfg.TableVersion != protocol.TableVersionV1 {
		return fmt.Errorf("unsupported table_version %d", cfg.TableVersion)
	}
	return nil
}

// LoadConfig reads a JSON config file. Absent fields take their defaults,
// so a partial file only has to name what it overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := readConfigFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	if name == "" || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid config file name: %q", path)
	}
	return fs.ReadFile(os.DirFS(dir), name)
}

// ResolveOrder maps the config string to the protocol constant.
func ResolveOrder(s string) (protocol.SiblingOrder, error) {
	switch s {
	case SiblingOrderFixed:
		return protocol.OrderFixed, nil
	case SiblingOrderSorted:
		return protocol.OrderSorted, nil
	}
	return 0, fmt.Errorf("invalid sibling_order %q", s)
}
