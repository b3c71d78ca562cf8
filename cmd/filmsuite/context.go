package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"filmsuite/internal/config"
	"filmsuite/internal/journal"
	"filmsuite/internal/logging"
	"filmsuite/internal/pipeline"
	"filmsuite/internal/services"
)

type commandContext struct {
	configFlag *string
	deps       *pipeline.Deps

	configOnce sync.Once
	config     *config.Config
	configErr  error

	pipelineOnce sync.Once
	pipeline     *pipeline.Pipeline
	workspace    *pipeline.Workspace
	logger       *slog.Logger
	closer       func() error
	pipelineErr  error
}

func newCommandContext(configFlag *string, deps *pipeline.Deps) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		deps:       deps,
	}
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

func (c *commandContext) ensurePipeline() (*pipeline.Pipeline, error) {
	c.pipelineOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.pipelineErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.pipelineErr = err
			return
		}
		c.logger = logger
		if c.deps != nil {
			deps := *c.deps
			if deps.Logger == nil {
				deps.Logger = logger
			}
			if deps.Journal == nil && cfg.Journal.Enabled {
				store, err := journal.Open(cfg.Journal.Path)
				if err != nil {
					c.pipelineErr = err
					return
				}
				deps.Journal = store
				c.closer = store.Close
			}
			c.pipeline = pipeline.New(cfg, deps)
		} else {
			c.pipeline, c.closer, c.pipelineErr = pipeline.FromConfig(cfg, logger)
		}
		if c.pipeline != nil {
			c.workspace = pipeline.NewWorkspace(c.pipeline)
		}
	})
	return c.pipeline, c.pipelineErr
}

// selectSession returns the session for the video named by arg, reusing the
// one already open for that video in this invocation.
func (c *commandContext) selectSession(ctx context.Context, arg string) (*pipeline.Session, error) {
	if _, err := c.ensurePipeline(); err != nil {
		return nil, err
	}
	return c.workspace.Select(ctx, arg)
}

// withPipeline runs fn with the wired pipeline and a context carrying a fresh
// correlation id, then releases the journal.
func (c *commandContext) withPipeline(cmd *cobra.Command, fn func(context.Context, *pipeline.Pipeline) error) error {
	p, err := c.ensurePipeline()
	if err != nil {
		return err
	}
	defer c.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(services.WithRequestID(ctx, uuid.NewString()), p)
}

func (c *commandContext) close() {
	if c.closer == nil {
		return
	}
	if err := c.closer(); err != nil && c.logger != nil {
		logging.WarnWithContext(c.logger, "journal close failed", "journal_close_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "recent history may be incomplete"))
	}
	c.closer = nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
