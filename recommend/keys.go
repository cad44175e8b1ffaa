package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// cacheKey derives a deterministic, content-addressed cache key.
// The kind prefix stays readable for debugging; the argument hash keeps
// keys short and safe regardless of the source strings.
func cacheKey(kind string, args ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(args, ":")))
	return kind + ":" + hex.EncodeToString(sum[:])[:16]
}
