package intent

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

type cacheEntry struct {
	prompt    string
	label     string
	expiresAt time.Time
}

// CachedClassifier wraps another classifier with a small LRU so repeated
// prompts in one process (MCP servers stay resident) skip the external
// CLI round trip. Errors are never cached.
type CachedClassifier struct {
	inner Classifier
	max   int
	ttl   time.Duration

	mu       sync.Mutex
	order    *list.List // front = most recent
	elements map[string]*list.Element
}

// NewCachedClassifier caches up to max classifications for ttl each.
func NewCachedClassifier(inner Classifier, max int, ttl time.Duration) *CachedClassifier {
	if max <= 0 {
		max = 128
	}
	return &CachedClassifier{
		inner:    inner,
		max:      max,
		ttl:      ttl,
		order:    list.New(),
		elements: make(map[string]*list.Element),
	}
}

// Classify returns the cached label when present and fresh, otherwise
// asks the wrapped classifier and remembers the answer.
func (c *CachedClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	key := strings.TrimSpace(prompt)
	if label, ok := c.lookup(key, time.Now()); ok {
		return label, nil
	}

	label, err := c.inner.Classify(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.remember(key, label, time.Now())
	return label, nil
}

func (c *CachedClassifier) lookup(key string, now time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.elements[key]
	if !ok {
		return "", false
	}
	e := elem.Value.(*cacheEntry)
	if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
		c.order.Remove(elem)
		delete(c.elements, key)
		return "", false
	}
	c.order.MoveToFront(elem)
	return e.label, true
}

func (c *CachedClassifier) remember(key, label string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = now.Add(c.ttl)
	}

	if elem, ok := c.elements[key]; ok {
		e := elem.Value.(*cacheEntry)
		e.label = label
		e.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	c.elements[key] = c.order.PushFront(&cacheEntry{
		prompt:    key,
		label:     label,
		expiresAt: expiresAt,
	})

	for c.order.Len() > c.max {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.elements, oldest.Value.(*cacheEntry).prompt)
	}
}

// Len reports the number of cached classifications.
func (c *CachedClassifier) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
