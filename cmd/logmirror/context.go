package main

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"logmirror/internal/config"
	"logmirror/internal/daemonrun"
	"logmirror/internal/remote"
)

// openSource builds the remote source for inspection commands.
var openSource = func(ctx context.Context, cfg *config.Config) (remote.Source, error) {
	return daemonrun.OpenSource(ctx, cfg)
}

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
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
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) source(ctx context.Context) (remote.Source, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return openSource(ctx, cfg)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
