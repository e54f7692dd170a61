package mapper

import (
	"sync/atomic"

	"github.com/viant/shapely"
)

// The process wide default mapper is opt in: binding layers that cannot carry
// an explicit mapper reference initialize it once at startup and tear it down
// on shutdown. Library code should prefer explicit mapper instances.
var defaultMapper atomic.Pointer[Mapper]

// Init installs the process wide default mapper; the previous one, if any, is
// replaced.
func Init(opts ...shapely.Option) *Mapper {
	ret := New(opts...)
	defaultMapper.Store(ret)
	return ret
}

// Default returns the process wide mapper or nil when Init was never called
// or Teardown dropped it.
func Default() *Mapper {
	return defaultMapper.Load()
}

// Teardown drops the process wide mapper along with its cached plans.
func Teardown() {
	defaultMapper.Store(nil)
}
