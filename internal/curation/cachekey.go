package curation

import (
	"fmt"
	"time"

	"github.com/msanchezgrice/futurenews-sub000/internal/pipeline"
)

// FormatVersion changes whenever the rendered story payload shape changes,
// invalidating every render-cache entry without a scan.
const FormatVersion = "v2"

// CacheKey derives the render-cache key for a story. Any change in the
// curation timestamp or the output format version changes the key, so
// re-reading an edition before and after curation never serves a stale
// rendering, and unchanged stories never need recomputation.
func CacheKey(storyID string, curatedAt time.Time) string {
	stamp := ""
	if !curatedAt.IsZero() {
		stamp = curatedAt.UTC().Format(time.RFC3339Nano)
	}
	return storyID + "|" + fmt.Sprintf("%016x", pipeline.StableHash(stamp)) + "|" + FormatVersion
}
