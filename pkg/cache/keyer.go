package cache

// ReportKeyOpts holds the parse options that affect a cached result.
type ReportKeyOpts struct {
	ChunkSize     int    `json:"chunk_size"`
	Policy        string `json:"policy"`
	IndentWidth   int    `json:"indent_width"`
	Configuration string `json:"configuration,omitempty"`
}

// RenderKeyOpts holds the options that affect a rendered chunk.
type RenderKeyOpts struct {
	Chunk    int    `json:"chunk"`
	Focus    string `json:"focus,omitempty"`
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ReportKey keys a parse result by report content hash and options.
	ReportKey(contentHash string, opts ReportKeyOpts) string
	// RenderKey keys a rendered chunk by report content hash and options.
	RenderKey(contentHash string, opts RenderKeyOpts) string
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ReportKey returns "report:<sha256>".
func (DefaultKeyer) ReportKey(contentHash string, opts ReportKeyOpts) string {
	return hashKey("report", contentHash, opts)
}

// RenderKey returns "render:<sha256>".
func (DefaultKeyer) RenderKey(contentHash string, opts RenderKeyOpts) string {
	return hashKey("render", contentHash, opts)
}

var _ Keyer = DefaultKeyer{}
