package pipeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// StableHash is FNV-1a 64-bit over the UTF-8 bytes of s. Every "random"
// choice in the pipeline (shuffles, template picks, horizon picks) derives
// from this hash so that rebuilding a day reproduces the same edition
// byte for byte. Do not replace with math/rand.
func StableHash(s string) uint64 {
	const offset64 = uint64(14695981039346656037)
	const prime64 = uint64(1099511628211)
	h := offset64
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

// Fingerprint identifies a raw item by lowercased title, canonical URL and
// day, so re-ingesting the same item on the same day is a no-op.
func Fingerprint(title, url, day string) string {
	seed := strings.ToLower(strings.TrimSpace(title)) + "|" + url + "|" + day
	return fmt.Sprintf("%016x", StableHash(seed))
}

// hashPick returns a stable index in [0, n).
func hashPick(seed string, n int) int {
	if n <= 0 {
		return 0
	}
	return int(StableHash(seed) % uint64(n))
}

// hashOrder returns the indices 0..n-1 permuted by per-index hash of the
// seed, giving a deterministic shuffle.
func hashOrder(seed string, n int) []int {
	order := make([]int, n)
	keys := make([]uint64, n)
	for i := range order {
		order[i] = i
		keys[i] = StableHash(seed + "|" + strconv.Itoa(i))
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]] < keys[order[b]]
	})
	return order
}

// jaccard is the token-set similarity of two sets; 0 when either is empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
