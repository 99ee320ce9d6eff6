// File: pool/handle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "fmt"

// Handle identifies one acquisition of a FixedPool slot. The zero Handle
// never resolves.
type Handle struct {
	index int
	gen   uint32
}

// Index returns the slot index the handle refers to.
func (h Handle) Index() int { return h.index }

// IsZero reports whether h was never issued by a pool.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("slot(%d#%d)", h.index, h.gen)
}
