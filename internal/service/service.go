// Package service ties payload extraction, record discovery and version
// selection to the Serverless Devs CLI for the three fclayer commands.
package service

import (
	"context"
	"fmt"
	"io"

	stderrors "errors"

	"go.uber.org/zap"

	"github.com/partner-up-dev/fclayer/internal/collector"
	"github.com/partner-up-dev/fclayer/internal/errors"
	"github.com/partner-up-dev/fclayer/internal/logging"
	"github.com/partner-up-dev/fclayer/internal/models"
	"github.com/partner-up-dev/fclayer/internal/parser"
	"github.com/partner-up-dev/fclayer/internal/versions"
)

// LayerCLI lists and removes layer versions.
type LayerCLI interface {
	ListVersions(ctx context.Context, layer models.Layer) (string, error)
	RemoveVersion(ctx context.Context, layer models.Layer, version int64) error
}

// Source selects where the versions payload comes from. JSONFile wins over
// JSON; when both are empty the versions are listed through the CLI.
type Source struct {
	JSONFile string
	JSON     string
}

// PruneOptions controls a prune run.
type PruneOptions struct {
	Keep            int
	DryRun          bool
	ContinueOnError bool
}

// Service runs the layer commands.
type Service struct {
	CLI       LayerCLI
	Extractor *parser.Extractor
	Logger    *zap.Logger
}

// New creates a Service.
func New(cli LayerCLI, extractor *parser.Extractor, logger *zap.Logger) *Service {
	return &Service{CLI: cli, Extractor: extractor, Logger: logging.OrNop(logger)}
}

// Items loads the payload from src and returns every layer version record in it.
func (s *Service) Items(ctx context.Context, layer models.Layer, src Source) ([]*models.JSONObject, error) {
	raw, err := s.load(ctx, layer, src)
	if err != nil {
		return nil, err
	}

	value, err := s.Extractor.Extract(raw)
	if err != nil {
		return nil, err
	}

	items := collector.Collect(value)
	logging.OrNop(s.Logger).Debug("collected layer version records",
		zap.String("layer", layer.Name),
		zap.Int("count", len(items)),
	)
	return items, nil
}

func (s *Service) load(ctx context.Context, layer models.Layer, src Source) (string, error) {
	switch {
	case src.JSONFile != "":
		return parser.ReadFile(src.JSONFile)
	case src.JSON != "":
		return src.JSON, nil
	case s.CLI == nil:
		return "", errors.NewInputError("no versions payload and no CLI configured", errors.ErrEmptyInput)
	default:
		return s.CLI.ListVersions(ctx, layer)
	}
}

// ResolveLatestARN returns the ARN of the highest layer version.
func (s *Service) ResolveLatestARN(ctx context.Context, layer models.Layer, src Source) (string, error) {
	items, err := s.Items(ctx, layer, src)
	if err != nil {
		return "", err
	}
	return versions.LatestARN(items)
}

// Prune removes every version older than the newest opts.Keep, one at a time
// from newest to oldest, writing a report to out. The first failed removal
// stops the run unless opts.ContinueOnError is set, in which case every
// failure is returned joined together.
func (s *Service) Prune(ctx context.Context, layer models.Layer, src Source, opts PruneOptions, out io.Writer) (versions.Plan, error) {
	if err := versions.ValidateKeep(opts.Keep); err != nil {
		return versions.Plan{}, err
	}

	items, err := s.Items(ctx, layer, src)
	if err != nil {
		return versions.Plan{}, err
	}

	plan, err := versions.SelectPruneTargets(items, opts.Keep)
	if err != nil {
		return versions.Plan{}, err
	}

	if plan.NothingToDelete() {
		fmt.Fprintf(out, "Layer versions: %s (<= %d), nothing to delete.\n", versions.FormatList(plan.All), opts.Keep)
		return plan, nil
	}

	fmt.Fprintf(out, "Keeping versions: %s; deleting: %s\n", versions.FormatList(plan.Kept), versions.FormatList(plan.Deleted))
	if opts.DryRun {
		fmt.Fprintf(out, "Dry run: %d layer version(s) left in place.\n", len(plan.Deleted))
		return plan, nil
	}
	if s.CLI == nil {
		return plan, errors.NewCommandError("no CLI configured to remove layer versions", nil)
	}

	var failures []error
	for _, version := range plan.Deleted {
		fmt.Fprintf(out, "Removing layer version: %d\n", version)
		if err := s.CLI.RemoveVersion(ctx, layer, version); err != nil {
			if !opts.ContinueOnError {
				return plan, err
			}
			logging.OrNop(s.Logger).Warn("layer version removal failed, continuing",
				zap.Int64("version", version),
				zap.Error(err),
			)
			failures = append(failures, err)
		}
	}
	return plan, stderrors.Join(failures...)
}
