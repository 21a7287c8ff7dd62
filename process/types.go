package process

import (
	"fmt"
)

// ProcessID represents a unique identifier for a process
type ProcessID uint32

// Address represents an absolute memory address within a target process
type Address uint64

func (a Address) ToString() string {
	return fmt.Sprintf("0x%X", uint64(a))
}

// Add returns the address advanced by offset bytes
func (a Address) Add(offset Size) Address {
	return a + Address(offset)
}

// Sub returns the address moved back by offset bytes
func (a Address) Sub(offset Size) Address {
	return a - Address(offset)
}

// Size represents a size of memory region
type Size uint

func (s Size) ToString() string {
	return fmt.Sprintf("%d bytes", uint(s))
}
