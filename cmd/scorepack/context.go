package main

import (
	"strings"
	"sync"

	"scorepack/internal/archive"
	"scorepack/internal/config"
	"scorepack/internal/convert"
	"scorepack/internal/convertqueue"
	"scorepack/internal/score"
)

// commandContext lazily wires the shared dependencies behind the CLI commands.
// Everything hangs off the config, which is loaded at most once per run.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	storeOnce sync.Once
	store     *archive.Store
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) archiveStore() (*archive.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.storeOnce.Do(func() {
		c.store = archive.NewStore(archive.NewRegistry(cfg.WriteLockTimeout()), nil)
	})
	return c.store, nil
}

func (c *commandContext) scoreService() (*score.Service, error) {
	store, err := c.archiveStore()
	if err != nil {
		return nil, err
	}
	return score.NewService(store, nil), nil
}

func (c *commandContext) converter() (*convert.Converter, error) {
	store, err := c.archiveStore()
	if err != nil {
		return nil, err
	}
	return convert.New(store, nil), nil
}

// withQueue opens the queue database for the duration of fn.
func (c *commandContext) withQueue(fn func(*convertqueue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := convertqueue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
