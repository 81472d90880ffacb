// internal/common/idempotency/store.go
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// DefaultTTL is how long a stored response is replayable.
const DefaultTTL = 24 * time.Hour

// Entry is a stored response keyed by idempotency key plus body hash.
type Entry struct {
	BodyHash  string          `json:"bodyHash"`
	Response  json.RawMessage `json:"response"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Store guards an operation against duplicate submission. Get returns
// the stored entry only when both the key and the body hash match; a
// matching key with a different hash is a miss, so the request is
// processed fresh.
type Store interface {
	Get(ctx context.Context, key, bodyHash string) (*Entry, bool, error)
	Put(ctx context.Context, key, bodyHash string, response []byte, ttl time.Duration) error
}

// BodyHash fingerprints a request payload. json.Marshal writes map
// keys in sorted order, so equivalent payloads hash identically
// regardless of field order in the original request.
func BodyHash(payload interface{}) string {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte{}
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
