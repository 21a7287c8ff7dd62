// Package pe parses the headers of a PE image read out of a foreign
// process and resolves symbols from its export directory.
package pe

import (
	"encoding/binary"
	"fmt"

	"github.com/bruns6077/cs2-dumper/process"
)

const (
	dosSignature  = 0x5A4D     // "MZ"
	ntSignature   = 0x00004550 // "PE\0\0"
	pe32Magic     = 0x10B
	pe32PlusMagic = 0x20B

	// HeaderSize is how much of a module's image is read to cover the
	// DOS and NT headers.
	HeaderSize = 0x1000
)

// DataDirectory is one {RVA, Size} entry of the optional header.
type DataDirectory struct {
	VirtualAddress uint32
	Size           uint32
}

// Headers holds the fields of a validated DOS+NT header pair that the
// dumper needs.
type Headers struct {
	Machine         uint16
	SizeOfImage     uint32
	ExportDirectory DataDirectory
}

// ParseHeaders validates the DOS and NT signatures in buf and extracts
// SizeOfImage and the export data directory. buf is the start of the
// mapped image, HeaderSize bytes in the usual case.
func ParseHeaders(buf []byte) (*Headers, error) {
	if len(buf) < 0x40 {
		return nil, fmt.Errorf("dos header truncated: %w", process.ErrBadImage)
	}

	if binary.LittleEndian.Uint16(buf[0:]) != dosSignature {
		return nil, fmt.Errorf("bad dos magic: %w", process.ErrBadImage)
	}

	lfanew := binary.LittleEndian.Uint32(buf[0x3C:])
	if int(lfanew)+24 > len(buf) {
		return nil, fmt.Errorf("e_lfanew out of range: %w", process.ErrBadImage)
	}

	if binary.LittleEndian.Uint32(buf[lfanew:]) != ntSignature {
		return nil, fmt.Errorf("bad nt signature: %w", process.ErrBadImage)
	}

	h := &Headers{
		Machine: binary.LittleEndian.Uint16(buf[lfanew+4:]),
	}

	// Optional header follows the 4-byte signature and 20-byte file header.
	opt := int(lfanew) + 24
	if opt+0x70 > len(buf) {
		return nil, fmt.Errorf("optional header truncated: %w", process.ErrBadImage)
	}

	magic := binary.LittleEndian.Uint16(buf[opt:])

	// DataDirectory starts at offset 96 for PE32, 112 for PE32+.
	var ddOffset, countOffset int
	switch magic {
	case pe32Magic:
		ddOffset, countOffset = 96, 92
	case pe32PlusMagic:
		ddOffset, countOffset = 112, 108
	default:
		return nil, fmt.Errorf("bad optional header magic %#x: %w", magic, process.ErrBadImage)
	}

	h.SizeOfImage = binary.LittleEndian.Uint32(buf[opt+56:])

	if opt+ddOffset+8 > len(buf) {
		return nil, fmt.Errorf("data directory truncated: %w", process.ErrBadImage)
	}

	if binary.LittleEndian.Uint32(buf[opt+countOffset:]) >= 1 {
		h.ExportDirectory = DataDirectory{
			VirtualAddress: binary.LittleEndian.Uint32(buf[opt+ddOffset:]),
			Size:           binary.LittleEndian.Uint32(buf[opt+ddOffset+4:]),
		}
	}

	return h, nil
}

// ReadHeaders reads and validates the headers of the module at base.
func ReadHeaders(mem process.MemoryReader, base process.Address) (*Headers, error) {
	buf, err := mem.ReadMemory(base, HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("read image headers at %s: %w", base.ToString(), err)
	}
	return ParseHeaders(buf)
}
