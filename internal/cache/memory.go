package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/scanvoca/scanvoca/internal/dictionary"
)

// Memory is an in-process LRU whose entries expire after a fixed TTL.
type Memory struct {
	lru *expirable.LRU[string, dictionary.Record]
}

// NewMemory creates a Memory cache bounded to size entries.
// The ttl given here applies to every entry; the ttl passed to Set is ignored.
func NewMemory(size int, ttl time.Duration) *Memory {
	return &Memory{lru: expirable.NewLRU[string, dictionary.Record](size, nil, ttl)}
}

func (c *Memory) Get(_ context.Context, key string) (dictionary.Record, bool) {
	return c.lru.Get(key)
}

func (c *Memory) Set(_ context.Context, key string, rec dictionary.Record, _ time.Duration) bool {
	c.lru.Add(key, rec)
	return true
}

// Len returns the number of live entries.
func (c *Memory) Len() int {
	return c.lru.Len()
}
