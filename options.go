package shapely

// Options capture plan build behavior. Options are resolved once when a plan
// is built; a built plan never consults runtime switches.
type Options struct {
	//EmitNullForAbsent emits null for absent optional fields; when false the
	//field is omitted from output entirely
	EmitNullForAbsent bool
	//InitialOutputCapacity seeds the growable output buffer
	InitialOutputCapacity int
	//StreamChunkSize sizes reader chunks and stream sink buffers
	StreamChunkSize int
	//StrictTrailing fails one shot parses on non whitespace trailing bytes
	StrictTrailing bool
	//MaxDepth guards the parser state stack
	MaxDepth int
	//StrictDuplicates fails on repeated object keys instead of last write wins
	StrictDuplicates bool
	//StrictUnknown fails on unknown object keys instead of discarding
	StrictUnknown bool
}

// Option mutates plan build options.
type Option func(o *Options)

// NewOptions returns defaults adjusted by supplied options.
func NewOptions(opts ...Option) *Options {
	ret := &Options{
		EmitNullForAbsent:     true,
		InitialOutputCapacity: 1024,
		StreamChunkSize:       4096,
		StrictTrailing:        true,
		MaxDepth:              512,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// WithEmitNullForAbsent controls null emission for absent optional fields.
func WithEmitNullForAbsent(flag bool) Option {
	return func(o *Options) {
		o.EmitNullForAbsent = flag
	}
}

// WithInitialOutputCapacity sets the growable sink starting capacity.
func WithInitialOutputCapacity(capacity int) Option {
	return func(o *Options) {
		if capacity > 0 {
			o.InitialOutputCapacity = capacity
		}
	}
}

// WithStreamChunkSize sets the stream read/flush chunk size.
func WithStreamChunkSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.StreamChunkSize = size
		}
	}
}

// WithStrictTrailing controls trailing byte handling in one shot mode.
func WithStrictTrailing(flag bool) Option {
	return func(o *Options) {
		o.StrictTrailing = flag
	}
}

// WithMaxDepth sets the nesting depth guard.
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		if depth > 0 {
			o.MaxDepth = depth
		}
	}
}

// WithStrictDuplicates fails object parses on repeated keys.
func WithStrictDuplicates(flag bool) Option {
	return func(o *Options) {
		o.StrictDuplicates = flag
	}
}

// WithStrictUnknown fails object parses on unknown keys.
func WithStrictUnknown(flag bool) Option {
	return func(o *Options) {
		o.StrictUnknown = flag
	}
}
