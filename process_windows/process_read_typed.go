//go:build windows

package process_windows

import (
	"bytes"
	"encoding/binary"

	"github.com/bruns6077/cs2-dumper/process"
)

// ReadUINT8 reads an unsigned 8-bit integer from the specified address
func (p *WindowsProcess) ReadUINT8(addr process.Address) (uint8, error) {
	data, err := p.ReadMemory(addr, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

// ReadUINT16 reads an unsigned 16-bit integer from the specified address
func (p *WindowsProcess) ReadUINT16(addr process.Address) (uint16, error) {
	data, err := p.ReadMemory(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(data), nil
}

// ReadUINT32 reads an unsigned 32-bit integer from the specified address
func (p *WindowsProcess) ReadUINT32(addr process.Address) (uint32, error) {
	data, err := p.ReadMemory(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data), nil
}

// ReadUINT64 reads an unsigned 64-bit integer from the specified address
func (p *WindowsProcess) ReadUINT64(addr process.Address) (uint64, error) {
	data, err := p.ReadMemory(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(data), nil
}

// ReadINT32 reads a signed 32-bit integer from the specified address
func (p *WindowsProcess) ReadINT32(addr process.Address) (int32, error) {
	data, err := p.ReadMemory(addr, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(data)), nil
}

// ReadNTS reads a null-terminated string from the specified address with
// a maximum length. The full maxLength bytes are read and truncated at
// the first NUL.
func (p *WindowsProcess) ReadNTS(addr process.Address, maxLength process.Size) (string, error) {
	if maxLength == 0 {
		return "", nil
	}

	data, err := p.ReadMemory(addr, maxLength)
	if err != nil {
		return "", err
	}

	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}

	return string(data), nil
}

// ReadNTS2 reads a null-terminated string from the specified address,
// empty on error
func (p *WindowsProcess) ReadNTS2(addr process.Address, maxLength process.Size) string {
	s, err := p.ReadNTS(addr, maxLength)
	if err != nil {
		return ""
	}
	return s
}

// ReadPOINTER reads a pointer value from the specified address
func (p *WindowsProcess) ReadPOINTER(addr process.Address) (process.Address, error) {
	value, err := p.ReadUINT64(addr)
	if err != nil {
		return 0, err
	}
	return process.Address(value), nil
}

// ReadPOINTER2 reads a pointer value from the specified address, zero on error
func (p *WindowsProcess) ReadPOINTER2(addr process.Address) process.Address {
	value, err := p.ReadPOINTER(addr)
	if err != nil {
		return 0
	}
	return value
}
