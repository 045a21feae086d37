package layout

import (
	"github.com/npillmayer/outflow/engine/frame"
	"github.com/npillmayer/outflow/engine/frame/boxtree"
	"github.com/npillmayer/outflow/engine/frame/fragment"
)

// Cache holds what one outer layout invocation may reuse: layout results of
// positioned boxes (the first-tier cache) and the geometry of containing
// blocks inside fragmentation contexts. A Cache must not outlive its pass.
type Cache struct {
	results      map[*boxtree.Node]cachedResult
	cbs          map[cbKey]ContainingBlockInfo
	hits, misses int
}

// cachedResult is a layout result together with the conditions it was
// produced under.
type cachedResult struct {
	cbOffset frame.LogicalOffset
	cbSize   frame.LogicalSize // content size, in the writing mode of the box
	static   frame.LogicalStaticPosition
	result   *fragment.Result
	offset   OffsetInfo
}

// NewCache creates an empty pass cache.
func NewCache() *Cache {
	c := &Cache{}
	c.Reset()
	return c
}

// Reset discards all entries.
func (c *Cache) Reset() {
	c.results = make(map[*boxtree.Node]cachedResult)
	c.cbs = make(map[cbKey]ContainingBlockInfo)
	c.hits, c.misses = 0, 0
}

// Stats reports cache hits and misses of the first-tier cache.
func (c *Cache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

func (c *Cache) lookup(n *boxtree.Node, cbOffset frame.LogicalOffset, cbSize frame.LogicalSize,
	static frame.LogicalStaticPosition, arena *fragment.Arena) (cachedResult, bool) {
	//
	entry, ok := c.results[n]
	if !ok || entry.cbOffset != cbOffset || entry.cbSize != cbSize || entry.static != static {
		c.misses++
		return cachedResult{}, false
	}
	if f := arena.Fragment(entry.result.Ref); f != entry.result.Fragment || f.Superseded() {
		// result from an earlier arena generation
		delete(c.results, n)
		c.misses++
		return cachedResult{}, false
	}
	c.hits++
	tracer().Debugf("first-tier cache hit for %v", n)
	return entry, true
}

func (c *Cache) store(n *boxtree.Node, entry cachedResult) {
	c.results[n] = entry
}

func (c *Cache) containingBlock(key cbKey) (ContainingBlockInfo, bool) {
	info, ok := c.cbs[key]
	return info, ok
}

func (c *Cache) storeContainingBlock(key cbKey, info ContainingBlockInfo) {
	c.cbs[key] = info
}
