package cache

// ScopedKeyer wraps a Keyer with a prefix so that entries written by
// different build versions never collide.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ReportKey generates a prefixed key for a parse result.
func (k *ScopedKeyer) ReportKey(contentHash string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(contentHash, opts)
}

// RenderKey generates a prefixed key for a rendered chunk.
func (k *ScopedKeyer) RenderKey(contentHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(contentHash, opts)
}
