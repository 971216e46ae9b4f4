package e2e_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/partner-up-dev/fclayer/internal/collector"
	"github.com/partner-up-dev/fclayer/internal/parser"
	"github.com/partner-up-dev/fclayer/internal/versions"
)

// generateListing builds a versions listing with count layer records in
// shuffled order, surrounded by noiseLines of CLI log output on each side.
func generateListing(count, noiseLines int) string {
	rng := rand.New(rand.NewSource(int64(count)))
	order := rng.Perm(count)

	var sb strings.Builder
	for i := 0; i < noiseLines; i++ {
		fmt.Fprintf(&sb, "[2024-06-01 12:00:%02d] [INFO] [S_CLI] - step {%d} of [setup]\n", i%60, i)
	}
	sb.WriteString(`{"region": "cn-hangzhou", "layers": [`)
	for i, v := range order {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb,
			`{"layerName": "deps", "version": %d, "layerVersionArn": "acs:fc:cn-hangzhou:42:layers/deps/versions/%d", "compatibleRuntime": ["python3.10", "nodejs18"]}`,
			v+1, v+1)
	}
	sb.WriteString("]}\n")
	for i := 0; i < noiseLines; i++ {
		fmt.Fprintf(&sb, "[INFO] trailing line %d\n", i)
	}
	return sb.String()
}

func benchmarkLatest(b *testing.B, count, noiseLines int) {
	raw := generateListing(count, noiseLines)
	extractor := parser.NewExtractor(nil, false)
	expected := fmt.Sprintf("acs:fc:cn-hangzhou:42:layers/deps/versions/%d", count)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		value, err := extractor.Extract(raw)
		require.NoError(b, err)
		arn, err := versions.LatestARN(collector.Collect(value))
		require.NoError(b, err)
		if arn != expected {
			b.Fatalf("got %s, want %s", arn, expected)
		}
	}
}

func BenchmarkLatest_Small(b *testing.B)  { benchmarkLatest(b, 10, 5) }
func BenchmarkLatest_Medium(b *testing.B) { benchmarkLatest(b, 500, 50) }
func BenchmarkLatest_Large(b *testing.B)  { benchmarkLatest(b, 5000, 200) }

func BenchmarkPrunePlan(b *testing.B) {
	raw := generateListing(2000, 20)
	value, err := parser.NewExtractor(nil, false).Extract(raw)
	require.NoError(b, err)
	items := collector.Collect(value)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		plan, err := versions.SelectPruneTargets(items, 3)
		require.NoError(b, err)
		if len(plan.Deleted) != 1997 {
			b.Fatalf("got %d deletions", len(plan.Deleted))
		}
	}
}
