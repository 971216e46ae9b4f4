// Package fccli drives the Serverless Devs CLI (`s cli fc3 layer ...`) to
// list and remove Function Compute layer versions.
package fccli

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/partner-up-dev/fclayer/internal/config"
	"github.com/partner-up-dev/fclayer/internal/errors"
	"github.com/partner-up-dev/fclayer/internal/logging"
	"github.com/partner-up-dev/fclayer/internal/models"
)

// Client lists and removes layer versions through a Runner.
type Client struct {
	Runner  Runner
	Command config.CommandConfig
	Logger  *zap.Logger
}

// NewClient creates a Client for the given command configuration.
func NewClient(runner Runner, command config.CommandConfig, logger *zap.Logger) *Client {
	return &Client{Runner: runner, Command: command, Logger: logging.OrNop(logger)}
}

// ListVersionsArgs returns the arguments for listing the versions of layer.
func (c *Client) ListVersionsArgs(layer models.Layer) []string {
	args := c.subcommand("versions")
	args = append(args,
		c.Command.FlagName("region"), layer.Region,
		c.Command.FlagName("layerName"), layer.Name,
		c.Command.FlagName("outputFormat"), c.outputFormat(),
		c.Command.FlagName("access"), layer.Access,
	)
	return args
}

// RemoveVersionArgs returns the arguments for removing one version of layer
// without an interactive confirmation.
func (c *Client) RemoveVersionArgs(layer models.Layer, version int64) []string {
	args := c.subcommand("remove")
	args = append(args,
		c.Command.FlagName("region"), layer.Region,
		c.Command.FlagName("layerName"), layer.Name,
		c.Command.FlagName("versionId"), strconv.FormatInt(version, 10),
		c.Command.FlagName("assumeYes"),
		c.Command.FlagName("access"), layer.Access,
	)
	return args
}

// ListVersions returns the raw output of the versions listing. The output
// may contain log lines around the JSON payload.
func (c *Client) ListVersions(ctx context.Context, layer models.Layer) (string, error) {
	logging.OrNop(c.Logger).Debug("listing layer versions",
		zap.String("region", layer.Region),
		zap.String("layer", layer.Name),
		zap.String("access", layer.Access),
	)
	out, err := c.Runner.Run(ctx, c.Command.Program, c.ListVersionsArgs(layer)...)
	if err != nil {
		return "", errors.NewCommandError(fmt.Sprintf("failed to list versions of layer %s", layer.Name), err)
	}
	return string(out), nil
}

// RemoveVersion deletes one layer version.
func (c *Client) RemoveVersion(ctx context.Context, layer models.Layer, version int64) error {
	logging.OrNop(c.Logger).Info("removing layer version",
		zap.String("layer", layer.Name),
		zap.Int64("version", version),
	)
	if _, err := c.Runner.Run(ctx, c.Command.Program, c.RemoveVersionArgs(layer, version)...); err != nil {
		return errors.NewCommandError(fmt.Sprintf("failed to remove version %d of layer %s", version, layer.Name), err)
	}
	return nil
}

func (c *Client) subcommand(name string) []string {
	args := make([]string, 0, len(c.Command.Prefix)+12)
	args = append(args, c.Command.Prefix...)
	return append(args, name)
}

func (c *Client) outputFormat() string {
	if c.Command.OutputFormat == "" {
		return config.DefaultOutputFormat
	}
	return c.Command.OutputFormat
}
