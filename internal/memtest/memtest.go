// Package memtest provides a sparse map-backed process.Reader for
// exercising the foreign-memory walkers without a live target.
package memtest

import (
	"encoding/binary"
	"fmt"

	"github.com/bruns6077/cs2-dumper/process"
)

// Memory is a fake target address space. Reads of unmapped bytes fail,
// which is how a vanished target page behaves.
type Memory struct {
	data map[process.Address]byte
}

var _ process.Reader = (*Memory)(nil)

func New() *Memory {
	return &Memory{data: make(map[process.Address]byte)}
}

// Put maps raw bytes at addr.
func (m *Memory) Put(addr process.Address, data []byte) {
	for i, b := range data {
		m.data[addr.Add(process.Size(i))] = b
	}
}

func (m *Memory) PutU16(addr process.Address, v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	m.Put(addr, buf[:])
}

func (m *Memory) PutU32(addr process.Address, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	m.Put(addr, buf[:])
}

func (m *Memory) PutU64(addr process.Address, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	m.Put(addr, buf[:])
}

// PutString maps a NUL-terminated string at addr.
func (m *Memory) PutString(addr process.Address, s string) {
	m.Put(addr, append([]byte(s), 0))
}

func (m *Memory) ReadMemory(addr process.Address, size process.Size) ([]byte, error) {
	buf := make([]byte, size)
	for i := range buf {
		b, ok := m.data[addr.Add(process.Size(i))]
		if !ok {
			return nil, fmt.Errorf("unmapped address %s", addr.Add(process.Size(i)).ToString())
		}
		buf[i] = b
	}
	return buf, nil
}

func (m *Memory) ReadUINT8(addr process.Address) (uint8, error) {
	data, err := m.ReadMemory(addr, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (m *Memory) ReadUINT16(addr process.Address) (uint16, error) {
	data, err := m.ReadMemory(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(data), nil
}

func (m *Memory) ReadUINT32(addr process.Address) (uint32, error) {
	data, err := m.ReadMemory(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data), nil
}

func (m *Memory) ReadUINT64(addr process.Address) (uint64, error) {
	data, err := m.ReadMemory(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(data), nil
}

func (m *Memory) ReadINT32(addr process.Address) (int32, error) {
	v, err := m.ReadUINT32(addr)
	return int32(v), err
}

// ReadNTS reads until the first NUL or maxLength, failing on the first
// unmapped byte like the real reader does on an unreadable page.
func (m *Memory) ReadNTS(addr process.Address, maxLength process.Size) (string, error) {
	var buf []byte
	for i := process.Size(0); i < maxLength; i++ {
		b, ok := m.data[addr.Add(i)]
		if !ok {
			return "", fmt.Errorf("unmapped address %s", addr.Add(i).ToString())
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	return string(buf), nil
}

func (m *Memory) ReadNTS2(addr process.Address, maxLength process.Size) string {
	s, err := m.ReadNTS(addr, maxLength)
	if err != nil {
		return ""
	}
	return s
}

func (m *Memory) ReadPOINTER(addr process.Address) (process.Address, error) {
	v, err := m.ReadUINT64(addr)
	return process.Address(v), err
}

func (m *Memory) ReadPOINTER2(addr process.Address) process.Address {
	v, err := m.ReadPOINTER(addr)
	if err != nil {
		return 0
	}
	return v
}
