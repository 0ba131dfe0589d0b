package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"gleaner/internal/api"
	"gleaner/internal/catalog"
	"gleaner/internal/config"
	"gleaner/internal/discovery"
	"gleaner/internal/ledger"
	"gleaner/internal/logging"
	"gleaner/internal/notifications"
	"gleaner/internal/review"
)

// commandContext lazily loads configuration and opens the shared database for
// the command being run. Commands work directly against the store; the
// discovery lock file keeps CLI runs and daemon runs from overlapping.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

// cliServices bundles everything a command can need for one invocation.
type cliServices struct {
	cfg       *config.Config
	store     *ledger.Store
	catalog   catalog.Service
	discovery *discovery.Service
	review    *review.Service
	notifier  notifications.Service
	grants    *api.GrantService
	runs      *api.RunService
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

// withServices opens the database, wires the service layer, runs fn, and
// closes the store afterwards.
func (c *commandContext) withServices(fn func(*cliServices) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	store, err := ledger.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	logger, err := logging.New(logging.Options{
		Level:       "warn",
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}

	registry, err := discovery.DefaultRegistry(cfg, logger)
	if err != nil {
		return err
	}

	cat := catalog.NewSQLiteStore(store.DB())
	notifier := notifications.NewService(cfg)

	svc := &cliServices{
		cfg:       cfg,
		store:     store,
		catalog:   cat,
		discovery: discovery.NewService(cfg, store, cat, registry, notifier, logger),
		review:    review.NewService(store, cat, logger),
		notifier:  notifier,
		grants:    api.NewGrantService(store, cfg),
		runs:      api.NewRunService(store),
	}
	return fn(svc)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
