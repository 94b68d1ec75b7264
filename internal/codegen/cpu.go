package codegen

import (
	"runtime"
	"sync/atomic"
)

var numCPUs atomic.Int32

// NumCPUs returns the worker budget for parallel emission.
func NumCPUs() int {
	if n := numCPUs.Load(); n > 0 {
		return int(n)
	}
	return runtime.NumCPU()
}

// SetNumCPUs overrides the worker budget; values below 1 restore the
// runtime default.
func SetNumCPUs(n int) {
	if n < 1 {
		numCPUs.Store(0)
		return
	}
	numCPUs.Store(int32(n))
}
