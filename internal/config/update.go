package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of .pch.yaml. Durations are kept as strings
// so the file reads "60s" rather than nanosecond integers.
type document struct {
	Version int `yaml:"version"`
	Backend struct {
		URL         string  `yaml:"url"`
		Model       string  `yaml:"model"`
		APIKey      string  `yaml:"api_key,omitempty"`
		Temperature float64 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
		Timeout     string  `yaml:"timeout"`
	} `yaml:"backend"`
	Store struct {
		Path        string `yaml:"path"`
		LockTimeout string `yaml:"lock_timeout"`
		LockStale   string `yaml:"lock_stale"`
	} `yaml:"store"`
	Monitor struct {
		DiskPath     string          `yaml:"disk_path"`
		SampleWindow string          `yaml:"sample_window"`
		Thresholds   ThresholdValues `yaml:"thresholds"`
	} `yaml:"monitor"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Email     struct {
		Address     string `yaml:"address,omitempty"`
		Password    string `yaml:"password,omitempty"`
		Server      string `yaml:"server"`
		MaxMessages int    `yaml:"max_messages"`
	} `yaml:"email"`
	CheckInterval string `yaml:"check_interval"`
	HistoryLimit  int    `yaml:"history_limit"`
}

func toDocument(cfg *Config) document {
	var d document
	d.Version = cfg.Version
	d.Backend.URL = cfg.Backend.URL
	d.Backend.Model = cfg.Backend.Model
	d.Backend.APIKey = cfg.Backend.APIKey
	d.Backend.Temperature = cfg.Backend.Temperature
	d.Backend.MaxTokens = cfg.Backend.MaxTokens
	d.Backend.Timeout = cfg.Backend.Timeout.String()
	d.Store.Path = cfg.Store.Path
	d.Store.LockTimeout = cfg.Store.LockTimeout.String()
	d.Store.LockStale = cfg.Store.LockStale.String()
	d.Monitor.DiskPath = cfg.Monitor.DiskPath
	d.Monitor.SampleWindow = cfg.Monitor.SampleWindow.String()
	d.Monitor.Thresholds = cfg.Monitor.Thresholds
	d.Dashboard = cfg.Dashboard
	d.Email.Address = cfg.Email.Address
	d.Email.Password = cfg.Email.Password
	d.Email.Server = cfg.Email.Server
	d.Email.MaxMessages = cfg.Email.MaxMessages
	d.CheckInterval = cfg.CheckInterval.String()
	d.HistoryLimit = cfg.HistoryLimit
	return d
}

// Marshal renders cfg as .pch.yaml content.
func Marshal(cfg *Config) ([]byte, error) {
	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(toDocument(cfg)); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return []byte(buf.String()), nil
}

// WriteDefault writes a default config file to path.
// Refuses to overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				"Config file already exists: "+path,
				"Use --force to overwrite it.")
		}
	}

	data, err := Marshal(DefaultConfig())
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to render default config", "")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to create config directory",
				"Check permissions on "+dir)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file",
			"Check permissions on "+path)
	}
	return nil
}

// KnownKeys returns every dotted config key, sorted.
func KnownKeys() []string {
	v := viper.New()
	setDefaults(v)
	keys := v.AllKeys()
	sort.Strings(keys)
	return keys
}

// SetValue sets a dotted key (e.g. backend.url) in an existing config file.
// It preserves the existing YAML structure and comments, creating
// intermediate mappings when a section is missing.
func SetValue(configPath, key, value string) error {
	if !isKnownKey(key) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown config key '%s'", key),
			"Known keys: "+strings.Join(KnownKeys(), ", "))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// An empty file parses to a zero node; start a fresh document.
	if root.Kind == 0 {
		root = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	parts := strings.Split(key, ".")
	for _, section := range parts[:len(parts)-1] {
		child := findMapValue(node, section)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: section},
				child)
		}
		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("'%s' is not a section in the config file", section)
		}
		node = child
	}

	leaf := parts[len(parts)-1]
	if existing := findMapValue(node, leaf); existing != nil {
		existing.Kind = yaml.ScalarNode
		existing.Tag = ""
		existing.Value = value
		existing.Content = nil
	} else {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: leaf},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value})
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(configPath, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isKnownKey(key string) bool {
	for _, k := range KnownKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}
