// Package cache memoizes judge verdicts so reruns over unchanged answers do
// not re-bill the judge. Keys are derived from the task, the agent answer,
// and the requested dimension set; a change to any of them misses.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache is the storage interface shared by the memory and disk backends.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// VerdictKey builds the cache key for a judge verdict.
func VerdictKey(taskID, answer string, dimensions []string) string {
	h := sha256.New()
	h.Write([]byte(taskID))
	h.Write([]byte{0})
	h.Write([]byte(answer))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(dimensions, ",")))
	return "dealbench:v1:" + hex.EncodeToString(h.Sum(nil))
}
