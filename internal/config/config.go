package config

import (
	"github.com/google/uuid"
)

type Driver interface {
	Exists() (bool, error)
	Write(config Config) error
	Read() (Config, error)
}

func NewStore(driver Driver) (Store, error) {
	exists, err := driver.Exists()
	if err != nil {
		return Store{}, err
	}
	if !exists {
		if err := driver.Write(defaultConfig); err != nil {
			return Store{}, err
		}
	}

	return Store{
		driver: driver,
	}, nil
}

type Store struct {
	driver Driver
}

func (p *Store) GetConfig() (Config, error) {
	return p.driver.Read()
}

func (p *Store) UpdateConfig(fn func(cfg Config) (Config, error)) error {
	cfg, err := p.driver.Read()
	if err != nil {
		return err
	}

	cfg, err = fn(cfg)
	if err != nil {
		return err
	}

	return p.driver.Write(cfg)
}

// Normalize gives every stream an identifier and fills missing defaults.
func Normalize(store *Store) error {
	return store.UpdateConfig(func(cfg Config) (Config, error) {
		for i := range cfg.Streams {
			if cfg.Streams[i].UUID == "" {
				cfg.Streams[i].UUID = uuid.NewString()
			}
		}

		if cfg.Accent == "" {
			cfg.Accent = defaultConfig.Accent
		}
		if cfg.Layout.Type == "" {
			cfg.Layout.Type = LayoutAuto
		}

		return cfg, nil
	})
}
