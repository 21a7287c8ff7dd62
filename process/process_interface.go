package process

// Process is the interface that defines operations for interacting with a target process
type Process interface {
	// Attach resolves the PID of the named process image and opens it
	Attach(name string) error

	// Open opens a process with the given PID for memory operations
	Open(pid ProcessID) error

	// Close closes the process and releases the handle
	Close() error

	// GetPID returns the process ID
	GetPID() ProcessID

	// WriteMemory writes data to the process memory at the specified address
	WriteMemory(addr Address, data []byte) error

	// Typed memory reading operations
	Reader

	// Module lookup operations
	ModuleResolver

	// Pattern scanning operations
	Scanner

	// ResolveExport resolves an exported symbol of the module at base
	ResolveExport(base Address, symbol string) (Address, error)
}

// MemoryReader is the minimal surface for reading raw bytes out of a target.
// The PE walker, the RIP-relative resolver and the schema walk all operate
// against this rather than the full Process.
type MemoryReader interface {
	// ReadMemory reads size bytes from the process at the specified address
	ReadMemory(addr Address, size Size) ([]byte, error)
}

// Reader defines typed read operations for process memory
type Reader interface {
	MemoryReader

	// ReadUINT8 reads an unsigned 8-bit integer from the specified address
	ReadUINT8(addr Address) (uint8, error)

	// ReadUINT16 reads an unsigned 16-bit integer from the specified address
	ReadUINT16(addr Address) (uint16, error)

	// ReadUINT32 reads an unsigned 32-bit integer from the specified address
	ReadUINT32(addr Address) (uint32, error)

	// ReadUINT64 reads an unsigned 64-bit integer from the specified address
	ReadUINT64(addr Address) (uint64, error)

	// ReadINT32 reads a signed 32-bit integer from the specified address
	ReadINT32(addr Address) (int32, error)

	// ReadNTS reads a null-terminated string from the specified address with a maximum length
	ReadNTS(addr Address, maxLength Size) (string, error)

	// ReadNTS2 reads a null-terminated string from the specified address, empty on error
	ReadNTS2(addr Address, maxLength Size) string

	// ReadPOINTER reads a pointer value from the specified address
	ReadPOINTER(addr Address) (Address, error)

	// ReadPOINTER2 reads a pointer value from the specified address, zero on error
	ReadPOINTER2(addr Address) Address
}

// ModuleResolver defines lookup operations over the target's loaded modules
type ModuleResolver interface {
	// ModuleBase returns the base address of the named module, case-insensitively
	ModuleBase(name string) (Address, error)

	// LoadedModules returns the names of all loaded modules in snapshot order
	LoadedModules() ([]string, error)
}

// Scanner defines signature scanning operations over a module's mapped image
type Scanner interface {
	// FindPattern returns the address of the first occurrence of pattern
	// inside the named module's image
	FindPattern(module string, pattern string) (Address, error)

	// ResolveRIPRelative follows the 32-bit displacement of a 7-byte
	// RIP-relative instruction at addr
	ResolveRIPRelative(addr Address) (Address, error)
}
