package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/ItsNotGoodName/x-tabstack/internal/core"
	"gopkg.in/yaml.v3"
)

func NewYAML(filePath string) YAML {
	return YAML{
		filePath: filePath,
	}
}

type YAML struct {
	filePath string
}

func (y YAML) Exists() (bool, error) {
	return core.FileExists(y.filePath)
}

func (y YAML) Read() (Config, error) {
	file, err := os.Open(y.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig, nil
		}
		return Config{}, err
	}
	defer file.Close()

	var cfg Config
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", y.filePath, err)
	}
	return cfg, nil
}

func (y YAML) Write(cfg Config) error {
	return writeAtomic(y.filePath, func(file *os.File) error {
		enc := yaml.NewEncoder(file)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	})
}

func NewJSON(filePath string) JSON {
	return JSON{
		filePath: filePath,
	}
}

type JSON struct {
	filePath string
}

func (j JSON) Exists() (bool, error) {
	return core.FileExists(j.filePath)
}

func (j JSON) Read() (Config, error) {
	file, err := os.Open(j.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig, nil
		}
		return Config{}, err
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", j.filePath, err)
	}
	return cfg, nil
}

func (j JSON) Write(cfg Config) error {
	return writeAtomic(j.filePath, func(file *os.File) error {
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	})
}

// writeAtomic writes to a sibling tmp file and renames it over filePath.
func writeAtomic(filePath string, encode func(file *os.File) error) error {
	filePathTmp := filePath + ".tmp"
	file, err := os.OpenFile(filePathTmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if err := encode(file); err != nil {
		return errors.Join(err, file.Close(), os.Remove(filePathTmp))
	}
	if err := file.Close(); err != nil {
		return err
	}

	return os.Rename(filePathTmp, filePath)
}

// Memory keeps the config in process. It is used when no file is wanted.
type Memory struct {
	mu     sync.RWMutex
	cfg    *Config
	writes int
}

func (m *Memory) Exists() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg != nil, nil
}

func (m *Memory) Read() (Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cfg == nil {
		return defaultConfig, nil
	}
	return clone(*m.cfg), nil
}

func (m *Memory) Write(cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg = clone(cfg)
	m.cfg = &cfg
	m.writes++
	return nil
}

func clone(cfg Config) Config {
	cfg.Streams = slices.Clone(cfg.Streams)
	for i := range cfg.Streams {
		cfg.Streams[i].Flags = slices.Clone(cfg.Streams[i].Flags)
	}
	cfg.Stacks = slices.Clone(cfg.Stacks)
	for i := range cfg.Stacks {
		cfg.Stacks[i] = slices.Clone(cfg.Stacks[i])
	}
	cfg.Layout.Manual = slices.Clone(cfg.Layout.Manual)
	return cfg
}
