// Package mapper is the codec facade: it caches parser and writer plans by
// canonical type key, guarantees at most one concurrent build per key and
// exposes the read/write convenience surface.
package mapper

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/viant/shapely"
	"github.com/viant/shapely/parser"
	"github.com/viant/shapely/writer"
)

type parserEntry struct {
	mu   sync.Mutex
	plan atomic.Pointer[parser.Plan]
}

type writerEntry struct {
	mu   sync.Mutex
	plan atomic.Pointer[writer.Plan]
}

// Mapper is long lived and safe to share across goroutines. Plan lookups run
// lock free after warm up; misses serialize per key behind an entry mutex
// with a double check, so concurrent requests for distinct keys build in
// parallel while the same key builds exactly once. Build failures are not
// cached.
type Mapper struct {
	opts    *shapely.Options
	parsers sync.Map //canonical key -> *parserEntry
	writers sync.Map //canonical key -> *writerEntry
}

// New creates a mapper with plan build options applied to every plan it builds.
func New(opts ...shapely.Option) *Mapper {
	return &Mapper{opts: shapely.NewOptions(opts...)}
}

// ParserFor returns the parser plan for a shape, building and caching it on
// first use along with plans for transitively referenced named sub shapes.
func (m *Mapper) ParserFor(shape *shapely.Shape) (*parser.Plan, error) {
	key := shape.CanonicalKey()
	loaded, _ := m.parsers.LoadOrStore(key, &parserEntry{})
	entry := loaded.(*parserEntry)
	if plan := entry.plan.Load(); plan != nil {
		return plan, nil
	}
	entry.mu.Lock()
	if plan := entry.plan.Load(); plan != nil {
		entry.mu.Unlock()
		return plan, nil
	}
	builder := parser.NewBuilder(m.opts)
	plan, err := builder.Build(shape)
	if err != nil {
		entry.mu.Unlock()
		m.parsers.Delete(key)
		return nil, err
	}
	entry.plan.Store(plan)
	entry.mu.Unlock()
	m.publishReferencedParsers(key, builder)
	return plan, nil
}

// publishReferencedParsers caches plans for sub shapes the build discovered;
// runs outside the requesting entry lock to keep lock ordering flat.
func (m *Mapper) publishReferencedParsers(rootKey string, builder *parser.Builder) {
	for refKey, refShape := range builder.Referenced() {
		if refKey == rootKey {
			continue
		}
		loaded, _ := m.parsers.LoadOrStore(refKey, &parserEntry{})
		entry := loaded.(*parserEntry)
		if entry.plan.Load() != nil {
			continue
		}
		entry.mu.Lock()
		if entry.plan.Load() == nil {
			if plan, err := builder.Build(refShape); err == nil {
				entry.plan.Store(plan)
			}
		}
		entry.mu.Unlock()
	}
}

// WriterFor returns the writer plan for a shape, building and caching it on
// first use along with plans for transitively referenced named sub shapes.
func (m *Mapper) WriterFor(shape *shapely.Shape) (*writer.Plan, error) {
	key := shape.CanonicalKey()
	loaded, _ := m.writers.LoadOrStore(key, &writerEntry{})
	entry := loaded.(*writerEntry)
	if plan := entry.plan.Load(); plan != nil {
		return plan, nil
	}
	entry.mu.Lock()
	if plan := entry.plan.Load(); plan != nil {
		entry.mu.Unlock()
		return plan, nil
	}
	builder := writer.NewBuilder(m.opts)
	plan, err := builder.Build(shape)
	if err != nil {
		entry.mu.Unlock()
		m.writers.Delete(key)
		return nil, err
	}
	entry.plan.Store(plan)
	entry.mu.Unlock()
	m.publishReferencedWriters(key, builder)
	return plan, nil
}

func (m *Mapper) publishReferencedWriters(rootKey string, builder *writer.Builder) {
	for refKey, refShape := range builder.Referenced() {
		if refKey == rootKey {
			continue
		}
		loaded, _ := m.writers.LoadOrStore(refKey, &writerEntry{})
		entry := loaded.(*writerEntry)
		if entry.plan.Load() != nil {
			continue
		}
		entry.mu.Lock()
		if entry.plan.Load() == nil {
			if plan, err := builder.Build(refShape); err == nil {
				entry.plan.Store(plan)
			}
		}
		entry.mu.Unlock()
	}
}

// GetParser is the lookup only method for binding layers: it returns the
// cached plan for a canonical type key or nil when not preregistered.
func (m *Mapper) GetParser(key string) *parser.Plan {
	loaded, ok := m.parsers.Load(key)
	if !ok {
		return nil
	}
	return loaded.(*parserEntry).plan.Load()
}

// GetWriter is the lookup only counterpart of GetParser for writer plans.
func (m *Mapper) GetWriter(key string) *writer.Plan {
	loaded, ok := m.writers.Load(key)
	if !ok {
		return nil
	}
	return loaded.(*writerEntry).plan.Load()
}

// Read deserializes a complete byte buffer into the shape target value.
func (m *Mapper) Read(data []byte, shape *shapely.Shape) (interface{}, error) {
	plan, err := m.ParserFor(shape)
	if err != nil {
		return nil, err
	}
	return plan.Parse(data)
}

// ReadString deserializes a complete JSON string.
func (m *Mapper) ReadString(text string, shape *shapely.Shape) (interface{}, error) {
	return m.Read([]byte(text), shape)
}

// ReadFrom deserializes from a stream, reading in chunks.
func (m *Mapper) ReadFrom(reader io.Reader, shape *shapely.Shape) (interface{}, error) {
	plan, err := m.ParserFor(shape)
	if err != nil {
		return nil, err
	}
	return plan.ParseReader(reader)
}

// WriteBytes serializes a value into a fresh buffer.
func (m *Mapper) WriteBytes(value interface{}, shape *shapely.Shape) ([]byte, error) {
	plan, err := m.WriterFor(shape)
	if err != nil {
		return nil, err
	}
	return plan.WriteBytes(value)
}

// WriteString serializes a value as a UTF-8 string.
func (m *Mapper) WriteString(value interface{}, shape *shapely.Shape) (string, error) {
	plan, err := m.WriterFor(shape)
	if err != nil {
		return "", err
	}
	return plan.WriteString(value)
}

// WriteTo serializes a value through a buffered stream sink.
func (m *Mapper) WriteTo(value interface{}, shape *shapely.Shape, out io.Writer) error {
	plan, err := m.WriterFor(shape)
	if err != nil {
		return err
	}
	return plan.WriteTo(value, out)
}
