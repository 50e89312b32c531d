// Package store provides the key-value and capped-list storage contract
// and its SQLite, Redis and in-process implementations.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Namespace is prepended to every logical key.
const Namespace = "study:"

const (
	// DefaultMaxItems caps a list when Push is given a non-positive max.
	DefaultMaxItems = 100
	// DefaultListLimit bounds GetList when given a non-positive limit.
	DefaultListLimit = 20
)

// Backend is the storage contract shared by every medium.
//
// No method reports failure to the caller: underlying errors are logged
// and the call degrades to its default (absent, empty, or a dropped write).
type Backend interface {
	// Set stores value under key, replacing any previous value and expiry.
	// A zero expire keeps the entry until it is overwritten or cleared.
	Set(ctx context.Context, key string, value any, expire time.Duration)

	// Get returns the live value under key. The bool is false when the key
	// is missing, expired, or the medium could not be read.
	Get(ctx context.Context, key string) (Value, bool)

	// Push prepends value to the list at key and drops entries beyond maxItems.
	Push(ctx context.Context, key string, value any, maxItems int)

	// GetList returns up to limit entries, newest first.
	GetList(ctx context.Context, key string, limit int) []Value

	// Clear removes every namespaced key and list.
	Clear(ctx context.Context)

	// Name identifies the active medium ("sqlite", "redis", "memory").
	Name() string

	// Close releases the medium.
	Close() error
}

// StatsReporter is implemented by backends that can describe their contents.
type StatsReporter interface {
	Stats(ctx context.Context) (*Stats, error)
}

// Value is a stored JSON payload.
type Value json.RawMessage

// Decode unmarshals the payload into dst.
func (v Value) Decode(dst any) error {
	return json.Unmarshal(v, dst)
}

// String returns the payload as text.
func (v Value) String() string {
	return string(v)
}

// MarshalJSON emits the payload unchanged.
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

func nsKey(key string) string {
	return Namespace + key
}

func encode(value any) (Value, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return Value(b), nil
}

// rawValue turns a stored payload into a Value. A payload that is not valid
// JSON is handed back verbatim as a JSON string.
func rawValue(payload []byte) Value {
	if json.Valid(payload) {
		return Value(payload)
	}
	b, _ := json.Marshal(string(payload))
	return Value(b)
}

func maxItemsOrDefault(n int) int {
	if n <= 0 {
		return DefaultMaxItems
	}
	return n
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return DefaultListLimit
	}
	return n
}

func defaultLogger(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return logrus.StandardLogger()
	}
	return l
}

func jsonValid(s string) bool {
	return json.Valid([]byte(s))
}
