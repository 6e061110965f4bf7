package passcode

import (
	"context"
	"time"
)

// Record is an outstanding one-time code for a subject identity. The subject
// itself is the store key, so at most one record exists per identity.
type Record struct {
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CodeStore is the durable, time-limited store shared by all service
// instances. Put overwrites unconditionally (supersession), Get returns
// ErrCodeNotFound for absent or expired records, and entries auto-expire
// server-side independently of explicit Delete.
type CodeStore interface {
	Put(ctx context.Context, subject string, record Record, ttl time.Duration) error
	Get(ctx context.Context, subject string) (Record, error)
	Delete(ctx context.Context, subject string) error
}
