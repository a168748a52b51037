package cache

import (
	"context"
	"sync"
	"time"
)

type memView struct {
	d         Dashboard
	expiresAt time.Time
}

// MemoryViewCache is the in-process ViewCache.
type MemoryViewCache struct {
	mu  sync.Mutex
	m   map[string]memView
	ttl time.Duration
	now func() time.Time
}

func NewMemoryViewCache(ttl time.Duration) *MemoryViewCache {
	return &MemoryViewCache{m: make(map[string]memView), ttl: ttl, now: time.Now}
}

func (c *MemoryViewCache) Get(_ context.Context, sessionID string) (*Dashboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[sessionID]
	if !ok {
		return nil, nil
	}
	if c.now().After(v.expiresAt) {
		delete(c.m, sessionID)
		return nil, nil
	}
	d := v.d.Clone()
	return &d, nil
}

// Set stores d and drops every expired snapshot.
func (c *MemoryViewCache) Set(_ context.Context, sessionID string, d Dashboard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for id, v := range c.m {
		if now.After(v.expiresAt) {
			delete(c.m, id)
		}
	}
	c.m[sessionID] = memView{d: d.Clone(), expiresAt: now.Add(c.ttl)}
	return nil
}

func (c *MemoryViewCache) Drop(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, sessionID)
	return nil
}

type memNotices struct {
	list      []Notice
	expiresAt time.Time
}

// MemoryNotices is the in-process Notices. Queued notices live for ttl after
// the last push.
type MemoryNotices struct {
	mu  sync.Mutex
	m   map[string]memNotices
	ttl time.Duration
	now func() time.Time
}

func NewMemoryNotices(ttl time.Duration) *MemoryNotices {
	return &MemoryNotices{m: make(map[string]memNotices), ttl: ttl, now: time.Now}
}

// Push queues notice and drops every expired queue.
func (n *MemoryNotices) Push(_ context.Context, sessionID string, notice Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	for id, q := range n.m {
		if now.After(q.expiresAt) {
			delete(n.m, id)
		}
	}
	q := n.m[sessionID]
	n.m[sessionID] = memNotices{list: append(q.list, notice), expiresAt: now.Add(n.ttl)}
	return nil
}

func (n *MemoryNotices) Pop(_ context.Context, sessionID string) ([]Notice, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	q, ok := n.m[sessionID]
	delete(n.m, sessionID)
	if !ok || n.now().After(q.expiresAt) {
		return nil, nil
	}
	return q.list, nil
}
