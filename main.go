package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/partner-up-dev/fclayer/internal/arn"
	"github.com/partner-up-dev/fclayer/internal/config"
	"github.com/partner-up-dev/fclayer/internal/errors"
	"github.com/partner-up-dev/fclayer/internal/fccli"
	"github.com/partner-up-dev/fclayer/internal/logging"
	"github.com/partner-up-dev/fclayer/internal/models"
	"github.com/partner-up-dev/fclayer/internal/parser"
	"github.com/partner-up-dev/fclayer/internal/service"
)

// Version information
const (
	Version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Config  string           `help:"Path to a config file. Defaults to the nearest .fclayer.yml." type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	LatestArn    LatestArnCmd    `cmd:"" name:"latest-arn" help:"Resolve the latest (highest version) FC layer ARN via Serverless Devs."`
	Prune        PruneCmd        `cmd:"" name:"prune" help:"Delete old FC layer versions via Serverless Devs, keeping the newest N."`
	NormalizeArn NormalizeArnCmd `cmd:"" name:"normalize-arn" help:"Normalize the account segment of an FC layer ARN."`
}

// LayerFlags selects a layer and where its versions are read from
type LayerFlags struct {
	Region    string  `help:"Region of the layer, e.g. cn-hangzhou." required:""`
	LayerName string  `help:"Name of the layer." name:"layer-name" required:""`
	Access    *string `help:"Serverless Devs access profile (default: ${default_access})."`
	JSONFile  string  `help:"Path to JSON output from 's cli fc3 layer versions -o json' (for testing)." name:"json-file"`
	JSON      string  `help:"JSON payload from 's cli fc3 layer versions -o json' (for testing)." name:"json"`
	Strict    bool    `help:"Require the payload to be exactly one JSON value."`
}

func (f *LayerFlags) source() service.Source {
	return service.Source{JSONFile: f.JSONFile, JSON: f.JSON}
}

// LatestArnCmd prints the ARN of the newest layer version
type LatestArnCmd struct {
	LayerFlags `embed:""`
}

// Run executes the latest-arn command
func (c *LatestArnCmd) Run(app *App) error {
	cfg, err := app.setup(config.Overrides{Access: c.Access, Strict: c.Strict})
	if err != nil {
		return err
	}

	resolved, err := app.service(cfg).ResolveLatestARN(app.Ctx, app.layer(cfg, c.LayerFlags), c.source())
	if err != nil {
		return err
	}
	return app.println(resolved)
}

// PruneCmd deletes all but the newest layer versions
type PruneCmd struct {
	LayerFlags `embed:""`

	Keep            *int `help:"Number of newest versions to keep, >= 1 (default: ${default_keep})."`
	DryRun          bool `help:"Print what would be deleted without removing anything." name:"dry-run"`
	ContinueOnError bool `help:"Keep removing versions after a failed removal." name:"continue-on-error"`
}

// Run executes the prune command
func (c *PruneCmd) Run(app *App) error {
	cfg, err := app.setup(config.Overrides{
		Access:          c.Access,
		Keep:            c.Keep,
		Strict:          c.Strict,
		DryRun:          c.DryRun,
		ContinueOnError: c.ContinueOnError,
	})
	if err != nil {
		return err
	}

	opts := service.PruneOptions{
		Keep:            cfg.Keep,
		DryRun:          cfg.Prune.DryRun,
		ContinueOnError: cfg.Prune.ContinueOnError,
	}
	_, err = app.service(cfg).Prune(app.Ctx, app.layer(cfg, c.LayerFlags), c.source(), opts, app.Stdout)
	return err
}

// NormalizeArnCmd rewrites the account segment of a layer ARN
type NormalizeArnCmd struct {
	RawArn    string `help:"Layer ARN to normalize." name:"raw-arn" required:""`
	AccountID string `help:"Alibaba Cloud account id (digits only)." name:"account-id" required:""`
}

// Run executes the normalize-arn command. It reads no config file.
func (c *NormalizeArnCmd) Run(app *App) error {
	if err := app.initLogger(app.Debug); err != nil {
		return err
	}

	normalized, err := arn.Normalize(c.RawArn, c.AccountID)
	if err != nil {
		return err
	}
	if parts, err := arn.Parse(normalized); err == nil {
		app.Logger.Debug("normalized layer ARN",
			zap.String("region", parts.Region),
			zap.String("layer", parts.Layer),
			zap.String("version", parts.Version),
		)
	}
	return app.println(normalized)
}

// App holds the runtime context shared by all commands
type App struct {
	Ctx        context.Context
	ConfigPath string
	Debug      bool
	Stdout     io.Writer
	Stderr     io.Writer
	// Runner executes the Serverless Devs CLI; nil means the real program.
	Runner fccli.Runner
	Logger *zap.Logger
}

// setup loads the configuration and builds the logger
func (a *App) setup(overrides config.Overrides) (*config.Config, error) {
	overrides.Debug = overrides.Debug || a.Debug

	configPath := a.ConfigPath
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(configPath, overrides)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := a.initLogger(cfg.Dev.Debug); err != nil {
		return nil, err
	}
	if configPath != "" {
		a.Logger.Debug("loaded config", zap.String("path", configPath))
	}
	return cfg, nil
}

func (a *App) initLogger(debug bool) error {
	if a.Logger != nil {
		return nil
	}
	logger, err := logging.New(debug)
	if err != nil {
		return errors.NewConfigError("failed to initialize logger", err)
	}
	a.Logger = logger
	return nil
}

func (a *App) service(cfg *config.Config) *service.Service {
	runner := a.Runner
	if runner == nil {
		execRunner := fccli.NewExecRunner(a.Logger)
		execRunner.Stderr = a.Stderr
		runner = execRunner
	}
	client := fccli.NewClient(runner, cfg.Command, a.Logger)
	return service.New(client, parser.NewExtractor(a.Logger, cfg.Strict), a.Logger)
}

func (a *App) layer(cfg *config.Config, flags LayerFlags) models.Layer {
	return models.Layer{Region: flags.Region, Name: flags.LayerName, Access: cfg.Access}
}

func (a *App) println(s string) error {
	if _, err := fmt.Fprintln(a.Stdout, s); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(os.Args[1:], &App{Ctx: ctx, Stdout: os.Stdout, Stderr: os.Stderr})
	stop()
	os.Exit(code)
}

// run parses args, executes the selected command and returns the exit code
func run(args []string, app *App) int {
	if app.Ctx == nil {
		app.Ctx = context.Background()
	}

	var cli CLI
	exited, exitCode := false, 0
	cliParser, err := kong.New(&cli,
		kong.Name("fclayer"),
		kong.Description("Resolve, prune and normalize Function Compute layer versions."),
		kong.Vars{
			"version":        Version,
			"default_access": config.DefaultAccess,
			"default_keep":   strconv.Itoa(config.DefaultKeep),
		},
		kong.Writers(app.Stdout, app.Stderr),
		kong.Exit(func(code int) { exited, exitCode = true, code }),
	)
	if err != nil {
		fmt.Fprintf(app.Stderr, "%v\n", err)
		return errors.ExitFailure
	}

	ctx, err := cliParser.Parse(args)
	if exited {
		// --help or --version
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(app.Stderr, "fclayer: error: %v\n", err)
		return errors.ExitArgument
	}

	app.ConfigPath = cli.Config
	app.Debug = cli.Debug

	err = ctx.Run(app)
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
	if err != nil {
		fmt.Fprintf(app.Stderr, "%s\n", errors.UserFriendlyError(err))
	}
	return errors.ExitCode(err)
}
