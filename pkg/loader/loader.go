// Package loader defines how uploaded files become bibliographic records.
package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/vendange/backend/pkg/record"
)

// RecordSource parses raw uploaded content into records.
type RecordSource interface {
	Load(ctx context.Context, content []byte) ([]record.Record, error)
}

// CacheKey derives a stable cache key from file content.
func CacheKey(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
