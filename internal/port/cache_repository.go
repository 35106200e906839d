package port

import (
	"context"
	"time"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ClearIdempotency releases a key so the request can be resubmitted
	ClearIdempotency(ctx context.Context, key string) error

	// AcquireLock takes key for ttl on behalf of token, returns false if held by someone else
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)

	// ReleaseLock frees key only if it is still held by token
	ReleaseLock(ctx context.Context, key, token string) error
}
