package mapper

import (
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/viant/shapely"
)

// Preload warms both plan caches for the supplied shapes concurrently on a
// bounded worker pool, so binding layers can fail fast at startup via
// GetParser/GetWriter lookups. The first build error wins; remaining builds
// still run to completion.
func (m *Mapper) Preload(shapes ...*shapely.Shape) error {
	if len(shapes) == 0 {
		return nil
	}
	size := runtime.NumCPU()
	if size > len(shapes) {
		size = len(shapes)
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	record := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	for i := range shapes {
		shape := shapes[i]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if _, err := m.ParserFor(shape); err != nil {
				record(err)
				return
			}
			_, err := m.WriterFor(shape)
			record(err)
		})
		if submitErr != nil {
			wg.Done()
			record(submitErr)
		}
	}
	wg.Wait()
	return firstErr
}
