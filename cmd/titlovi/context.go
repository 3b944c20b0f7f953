package main

import (
	"errors"
	"strings"
	"sync"

	"github.com/Belphemur/titlovi/internal/archive"
	"github.com/Belphemur/titlovi/internal/cache"
	"github.com/Belphemur/titlovi/internal/catalog"
	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/media"
	"github.com/Belphemur/titlovi/internal/models"
	"github.com/Belphemur/titlovi/internal/provider"
	"github.com/Belphemur/titlovi/internal/search"
	"github.com/Belphemur/titlovi/internal/store"
	"github.com/Belphemur/titlovi/internal/token"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
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
		if path == "" {
			c.config = config.GetConfig()
			return
		}
		c.config, c.configErr = config.Reload(path)
	})
	return c.config, c.configErr
}

// app wires the acquisition engine for one command invocation
type app struct {
	cfg      *config.Config
	client   *catalog.HTTPClient
	store    store.Store
	tokens   *token.Manager
	cache    cache.Cache
	registry *provider.Registry
}

func newApp(cfg *config.Config) (*app, error) {
	if err := models.SetCatalogTimeZone(cfg.CatalogTimeZone); err != nil {
		return nil, err
	}

	client, err := catalog.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg)
	if err != nil {
		return nil, err
	}

	downloads, err := cache.NewFromConfig(cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	tokens := token.NewManager(client, st)
	registry := provider.NewDefaultRegistry(provider.Dependencies{
		Tokens:            tokens,
		Collector:         search.NewAggregatorFromConfig(client, cfg),
		Downloader:        client,
		Extractor:         archive.NewFromConfig(cfg),
		Inspector:         media.NewFromConfig(cfg),
		Cache:             downloads,
		FallbackEncoding:  cfg.Archive.FallbackEncoding,
		NormalizeEncoding: cfg.Archive.NormalizeEncoding,
	})

	return &app{
		cfg:      cfg,
		client:   client,
		store:    st,
		tokens:   tokens,
		cache:    downloads,
		registry: registry,
	}, nil
}

func (a *app) Close() error {
	return errors.Join(a.cache.Close(), a.store.Close())
}

func (c *commandContext) withApp(fn func(*app) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}
