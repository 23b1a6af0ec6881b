package ir

// Dialect identifies a target language.
type Dialect uint8

const (
	DialectGLSL Dialect = iota
	DialectWGSL
)

type cacheKey struct {
	expr    ExpressionHandle
	dialect Dialect
}

// TextCache memoizes the generated text of expression nodes per dialect.
// A cache belongs to one compile call and one function context; it is not
// safe for concurrent use.
type TextCache struct {
	entries map[cacheKey]string
}

// NewTextCache returns an empty cache.
func NewTextCache() *TextCache {
	return &TextCache{entries: make(map[cacheKey]string, 64)}
}

// Get returns the cached text of h in dialect d.
func (c *TextCache) Get(h ExpressionHandle, d Dialect) (string, bool) {
	s, ok := c.entries[cacheKey{h, d}]
	return s, ok
}

// Put records the text of h in dialect d.
func (c *TextCache) Put(h ExpressionHandle, d Dialect, text string) {
	c.entries[cacheKey{h, d}] = text
}

// Reset drops every entry.
func (c *TextCache) Reset() {
	clear(c.entries)
}

// Len returns the number of cached entries.
func (c *TextCache) Len() int {
	return len(c.entries)
}
