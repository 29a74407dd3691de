package traffic

import "github.com/catmux-radio/catmux/internal/catproto"

// annotationCacheMaxSize bounds the decoded-frame cache independently of the
// entry log's own size limit.
const annotationCacheMaxSize = 1000

// annotationCacheKey identifies a decode result by the bytes decoded and the
// protocol hint used, so the same raw frame decoded under different hints
// gets distinct cache entries.
type annotationCacheKey struct {
	hash    uint64
	length  int
	hint    catproto.Protocol
	hintSet bool
}

// fxHash computes a fast, non-cryptographic hash of data, in the style of
// rustc's FxHash: rotate-xor-multiply per byte.
func fxHash(data []byte) uint64 {
	const seed = 0x517cc1b727220a95
	var hash uint64
	for _, b := range data {
		hash = (hash<<5 | hash>>59) ^ uint64(b)
		hash *= seed
	}
	return hash
}

func newAnnotationCacheKey(data []byte, hint *catproto.Protocol) annotationCacheKey {
	key := annotationCacheKey{hash: fxHash(data), length: len(data)}
	if hint != nil {
		key.hint = *hint
		key.hintSet = true
	}
	return key
}

// annotationCache memoizes DecodeAndAnnotateWithHint results behind a
// bounded FIFO, so a traffic log re-displaying the same bytes (e.g. a radio
// polling loop) doesn't re-run protocol detection every time.
type annotationCache struct {
	entries map[annotationCacheKey]*catproto.AnnotatedFrame
	order   []annotationCacheKey
}

func newAnnotationCache() *annotationCache {
	return &annotationCache{
		entries: make(map[annotationCacheKey]*catproto.AnnotatedFrame, annotationCacheMaxSize),
		order:   make([]annotationCacheKey, 0, annotationCacheMaxSize),
	}
}

func (c *annotationCache) get(data []byte, hint *catproto.Protocol) *catproto.AnnotatedFrame {
	key := newAnnotationCacheKey(data, hint)
	if frame, ok := c.entries[key]; ok {
		return frame
	}

	var stored *catproto.AnnotatedFrame
	if frame, ok := catproto.DecodeAndAnnotateWithHint(data, hint); ok {
		stored = &frame
	}

	if len(c.entries) >= annotationCacheMaxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = stored
	c.order = append(c.order, key)

	return stored
}

func (c *annotationCache) clear() {
	c.entries = make(map[annotationCacheKey]*catproto.AnnotatedFrame, annotationCacheMaxSize)
	c.order = c.order[:0]
}
