package process

import (
	"encoding/binary"
	"fmt"
)

// RIP-relative sites matched by the fixed signatures are 7-byte
// MOV r64, [rip+disp32] / LEA r64, [rip+disp32] instructions whose
// displacement begins after the 3-byte opcode/ModRM prefix.
const (
	ripDispOffset  = 3
	ripInstrLength = 7
)

// ResolveRelative reads the signed 32-bit displacement at addr+dispOffset and
// returns the absolute target relative to the end of the instruction,
// addr + instrLength + displacement.
func ResolveRelative(mem MemoryReader, addr Address, dispOffset, instrLength Size) (Address, error) {
	data, err := mem.ReadMemory(addr.Add(dispOffset), 4)
	if err != nil {
		return 0, fmt.Errorf("read displacement at %s: %w", addr.Add(dispOffset).ToString(), err)
	}

	disp := int32(binary.LittleEndian.Uint32(data))

	return Address(int64(addr) + int64(instrLength) + int64(disp)), nil
}

// ResolveRIPRelative resolves the common 7-byte encoding with the
// displacement at offset 3. Callers with other encodings use ResolveRelative.
func ResolveRIPRelative(mem MemoryReader, addr Address) (Address, error) {
	return ResolveRelative(mem, addr, ripDispOffset, ripInstrLength)
}
