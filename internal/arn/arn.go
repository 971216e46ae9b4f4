package arn

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/partner-up-dev/fclayer/internal/errors"
)

// layerARNPattern splits a Function Compute layer ARN into the prefix up to
// the region, the account segment, and the layer/version suffix.
var layerARNPattern = regexp.MustCompile(`^(acs:fc:[a-z0-9-]+:)([^:]+)(:layers/.+/versions/.+)$`)

var layerPathPattern = regexp.MustCompile(`^:layers/(.+)/versions/(.+)$`)

// ARN is a layer version ARN split into its parts.
type ARN struct {
	Region  string
	Account string
	Layer   string
	Version string
}

// String renders the ARN back into its canonical form.
func (a ARN) String() string {
	return fmt.Sprintf("acs:fc:%s:%s:layers/%s/versions/%s", a.Region, a.Account, a.Layer, a.Version)
}

// Parse splits a layer ARN into its parts.
func Parse(raw string) (ARN, error) {
	raw = strings.TrimSpace(raw)
	m := layerARNPattern.FindStringSubmatch(raw)
	if m == nil {
		return ARN{}, errors.NewValidationError(fmt.Sprintf("Invalid layer ARN: %s", raw), errors.ErrInvalidARN)
	}
	// m[3] always matches layerPathPattern.
	path := layerPathPattern.FindStringSubmatch(m[3])
	return ARN{
		Region:  strings.TrimSuffix(strings.TrimPrefix(m[1], "acs:fc:"), ":"),
		Account: m[2],
		Layer:   path[1],
		Version: path[2],
	}, nil
}

// Normalize replaces the account segment of rawARN with accountID. Both
// inputs are trimmed first; accountID must be all decimal digits.
func Normalize(rawARN, accountID string) (string, error) {
	rawARN = strings.TrimSpace(rawARN)
	accountID = strings.TrimSpace(accountID)

	m := layerARNPattern.FindStringSubmatch(rawARN)
	if m == nil {
		return "", errors.NewValidationError(fmt.Sprintf("Invalid layer ARN: %s", rawARN), errors.ErrInvalidARN)
	}
	if !isDigits(accountID) {
		return "", errors.NewValidationError("Invalid --account-id; expected digits.", errors.ErrInvalidAccountID)
	}
	return m[1] + accountID + m[3], nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
