// Package versions picks layer versions out of collected records: the newest
// one for ARN resolution and the older ones for pruning.
package versions

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/partner-up-dev/fclayer/internal/collector"
	"github.com/partner-up-dev/fclayer/internal/errors"
	"github.com/partner-up-dev/fclayer/internal/models"
)

// Invalid is returned by CoerceVersion for values that are not usable as a
// version number.
const Invalid int64 = -1

var integerString = regexp.MustCompile(`^[+-]?[0-9]+(_[0-9]+)*$`)

// CoerceVersion converts a decoded "version" value to an integer. It never
// fails: anything that is not cleanly an integer yields Invalid.
//
// Accepted: integers, finite floats (truncated toward zero), booleans, and
// strings holding a base-10 integer, optionally signed, padded with whitespace
// or using '_' between digits.
func CoerceVersion(value models.JSONValue) int64 {
	switch v := value.(type) {
	case json.Number:
		return coerceNumber(string(v))
	case string:
		s := strings.TrimSpace(v)
		if !integerString.MatchString(s) {
			return Invalid
		}
		n, err := strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 10, 64)
		if err != nil {
			return Invalid
		}
		return n
	case bool:
		if v {
			return 1
		}
		return 0
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return truncate(v)
	default:
		return Invalid
	}
}

func coerceNumber(s string) int64 {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Invalid
	}
	return truncate(f)
}

func truncate(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Invalid
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return Invalid
	}
	return int64(t)
}

// VersionOf returns the coerced "version" field of item.
func VersionOf(item *models.JSONObject) int64 {
	v, _ := item.Get(collector.FieldVersion)
	return CoerceVersion(v)
}

// SelectLatest returns the item with the highest version. The first item to
// reach the maximum wins ties. Items whose version is Invalid never win, so a
// list where every version is Invalid is reported as not found.
func SelectLatest(items []*models.JSONObject) (*models.JSONObject, error) {
	var best *models.JSONObject
	bestVersion := Invalid
	for _, item := range items {
		if version := VersionOf(item); version > bestVersion {
			bestVersion = version
			best = item
		}
	}
	if best == nil {
		return nil, errors.NewNotFoundError("No layer versions found in output", errors.ErrNoVersions)
	}
	return best, nil
}

// ItemARN returns the ARN of item, preferring "layerVersionArn" and falling
// back to "arn" when the former is absent or empty.
func ItemARN(item *models.JSONObject) (string, error) {
	value, _ := item.Get(collector.FieldLayerVersionArn)
	if !truthy(value) {
		value, _ = item.Get(collector.FieldArn)
	}
	arn, ok := value.(string)
	if !ok || arn == "" {
		return "", errors.NewNotFoundError("Latest layer item did not include an ARN field", errors.ErrMissingARN)
	}
	return arn, nil
}

// LatestARN resolves the ARN of the highest version among items.
func LatestARN(items []*models.JSONObject) (string, error) {
	best, err := SelectLatest(items)
	if err != nil {
		return "", err
	}
	return ItemARN(best)
}

func truthy(value models.JSONValue) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		return err != nil || f != 0
	case models.JSONArray:
		return len(v) > 0
	case *models.JSONObject:
		return v.Len() > 0
	default:
		return true
	}
}

// Plan is the outcome of SelectPruneTargets. All versions are distinct and
// sorted from newest to oldest.
type Plan struct {
	Keep    int
	All     []int64
	Kept    []int64
	Deleted []int64
}

// NothingToDelete reports whether the plan removes no versions.
func (p Plan) NothingToDelete() bool {
	return len(p.Deleted) == 0
}

// ValidateKeep rejects keep counts below one.
func ValidateKeep(keep int) error {
	if keep < 1 {
		return errors.NewArgumentError("--keep must be >= 1", errors.ErrInvalidKeep)
	}
	return nil
}

// SelectPruneTargets keeps the newest keep versions and marks the rest for
// deletion. Invalid versions are ignored and duplicates collapse.
func SelectPruneTargets(items []*models.JSONObject, keep int) (Plan, error) {
	if err := ValidateKeep(keep); err != nil {
		return Plan{}, err
	}

	seen := make(map[int64]struct{}, len(items))
	all := make([]int64, 0, len(items))
	for _, item := range items {
		version := VersionOf(item)
		if version < 0 {
			continue
		}
		if _, dup := seen[version]; dup {
			continue
		}
		seen[version] = struct{}{}
		all = append(all, version)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] > all[j] })

	plan := Plan{Keep: keep, All: all}
	if len(all) <= keep {
		plan.Kept = all
		return plan, nil
	}
	plan.Kept = all[:keep]
	plan.Deleted = all[keep:]
	return plan, nil
}

// FormatList renders versions the way the prune report prints them: [5, 4, 3].
func FormatList(versions []int64) string {
	parts := make([]string, len(versions))
	for i, v := range versions {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}
