// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files (affinity_linux.go, affinity_stub.go) guarded by build tags.

package affinity

import (
	"fmt"
	"runtime"

	"github.com/momentics/memlab/api"
)

// Pin locks the calling goroutine to its OS thread and binds that thread to
// cpuID so timed loops are not migrated between cores. The returned release
// restores the previous mask and unlocks the thread; it is never nil and
// must be called from the same goroutine.
func Pin(cpuID int) (release func(), err error) {
	if cpuID < 0 || cpuID >= runtime.NumCPU() {
		return func() {}, api.NewError(api.ErrCodeInvalidArgument,
			fmt.Sprintf("affinity: cpu %d out of range [0,%d)", cpuID, runtime.NumCPU())).
			WithContext("cpu", cpuID)
	}
	runtime.LockOSThread()
	restore, err := pinPlatform(cpuID)
	return func() {
		restore()
		runtime.UnlockOSThread()
	}, err
}
