package pe

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/bruns6077/cs2-dumper/process"
)

// Offsets within IMAGE_EXPORT_DIRECTORY.
const (
	expBase            = 0x10
	expNumberFunctions = 0x14
	expNumberNames     = 0x18
	expAddrFunctions   = 0x1C
	expAddrNames       = 0x20
	expAddrOrdinals    = 0x24

	exportDirectorySize = 0x28

	// Forwarder chains in practice are one hop; anything deeper is a
	// broken or hostile image.
	maxForwardDepth = 4
)

// exportView is the export directory of one module copied out of the
// target. RVAs inside the directory range are dereferenced through the
// local copy.
type exportView struct {
	base process.Address
	va   uint32
	size uint32
	data []byte
}

func readExportView(mem process.MemoryReader, base process.Address) (*exportView, error) {
	headers, err := ReadHeaders(mem, base)
	if err != nil {
		return nil, err
	}

	dir := headers.ExportDirectory
	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return nil, fmt.Errorf("no export directory: %w", process.ErrSymbolNotFound)
	}
	if dir.Size < exportDirectorySize {
		return nil, fmt.Errorf("export directory truncated: %w", process.ErrBadImage)
	}

	data, err := mem.ReadMemory(base.Add(process.Size(dir.VirtualAddress)), process.Size(dir.Size))
	if err != nil {
		return nil, fmt.Errorf("read export directory: %w", err)
	}

	return &exportView{base: base, va: dir.VirtualAddress, size: dir.Size, data: data}, nil
}

// u32 reads a little-endian uint32 at the given RVA.
func (v *exportView) u32(rva uint32) (uint32, bool) {
	off := int64(rva) - int64(v.va)
	if off < 0 || off+4 > int64(len(v.data)) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(v.data[off:]), true
}

func (v *exportView) u16(rva uint32) (uint16, bool) {
	off := int64(rva) - int64(v.va)
	if off < 0 || off+2 > int64(len(v.data)) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(v.data[off:]), true
}

// cstring reads a NUL-terminated string at the given RVA.
func (v *exportView) cstring(rva uint32) (string, bool) {
	off := int64(rva) - int64(v.va)
	if off < 0 || off >= int64(len(v.data)) {
		return "", false
	}
	for end := off; end < int64(len(v.data)); end++ {
		if v.data[end] == 0 {
			return string(v.data[off:end]), true
		}
	}
	return "", false
}

// forwarded reports whether a resolved function RVA lands inside the
// export directory itself, which marks a forwarder string.
func (v *exportView) forwarded(fnRVA uint32) bool {
	return fnRVA >= v.va && fnRVA < v.va+v.size
}

func (v *exportView) functionRVA(ordinalIndex uint16) (uint32, bool) {
	count, ok := v.u32(v.va + expNumberFunctions)
	if !ok || uint32(ordinalIndex) >= count {
		return 0, false
	}
	addrFunctions, ok := v.u32(v.va + expAddrFunctions)
	if !ok {
		return 0, false
	}
	return v.u32(addrFunctions + uint32(ordinalIndex)*4)
}

// ResolveExport walks the export name table of the module at base and
// returns the absolute address of the named symbol. Forwarded exports
// are chased through modules; with a nil resolver they degrade to
// ErrSymbolNotFound.
func ResolveExport(mem process.MemoryReader, modules process.ModuleResolver, base process.Address, symbol string) (process.Address, error) {
	return resolveExport(mem, modules, base, symbol, 0)
}

func resolveExport(mem process.MemoryReader, modules process.ModuleResolver, base process.Address, symbol string, depth int) (process.Address, error) {
	if depth > maxForwardDepth {
		return 0, fmt.Errorf("forwarder chain too deep for %q: %w", symbol, process.ErrSymbolNotFound)
	}

	view, err := readExportView(mem, base)
	if err != nil {
		return 0, err
	}

	numberNames, ok := view.u32(view.va + expNumberNames)
	if !ok {
		return 0, fmt.Errorf("export directory truncated: %w", process.ErrBadImage)
	}
	addrNames, ok1 := view.u32(view.va + expAddrNames)
	addrOrdinals, ok2 := view.u32(view.va + expAddrOrdinals)
	if !ok1 || !ok2 {
		return 0, fmt.Errorf("export directory truncated: %w", process.ErrBadImage)
	}

	for i := uint32(0); i < numberNames; i++ {
		nameRVA, ok := view.u32(addrNames + i*4)
		if !ok {
			continue
		}
		name, ok := view.cstring(nameRVA)
		if !ok || name != symbol {
			continue
		}

		ordinalIndex, ok := view.u16(addrOrdinals + i*2)
		if !ok {
			return 0, fmt.Errorf("name ordinal table truncated: %w", process.ErrBadImage)
		}

		return resolveFunction(mem, modules, view, ordinalIndex, depth)
	}

	return 0, fmt.Errorf("export %q: %w", symbol, process.ErrSymbolNotFound)
}

func resolveFunction(mem process.MemoryReader, modules process.ModuleResolver, view *exportView, ordinalIndex uint16, depth int) (process.Address, error) {
	fnRVA, ok := view.functionRVA(ordinalIndex)
	if !ok || fnRVA == 0 {
		return 0, fmt.Errorf("function table entry %d: %w", ordinalIndex, process.ErrSymbolNotFound)
	}

	if view.forwarded(fnRVA) {
		forward, ok := view.cstring(fnRVA)
		if !ok {
			return 0, fmt.Errorf("unreadable forwarder string: %w", process.ErrBadImage)
		}
		return resolveForward(mem, modules, forward, depth+1)
	}

	return view.base.Add(process.Size(fnRVA)), nil
}

// resolveForward chases a forwarder of the form "OtherModule.Name" or
// "OtherModule.#ordinal" into the other module's export table.
func resolveForward(mem process.MemoryReader, modules process.ModuleResolver, forward string, depth int) (process.Address, error) {
	dot := strings.LastIndexByte(forward, '.')
	if dot <= 0 || dot+1 >= len(forward) {
		return 0, fmt.Errorf("malformed forwarder %q: %w", forward, process.ErrSymbolNotFound)
	}

	if modules == nil {
		return 0, fmt.Errorf("forwarded export %q: %w", forward, process.ErrSymbolNotFound)
	}

	moduleName := forward[:dot] + ".dll"
	target := forward[dot+1:]

	base, err := modules.ModuleBase(moduleName)
	if err != nil {
		return 0, fmt.Errorf("forwarder target %q: %w", forward, err)
	}

	if strings.HasPrefix(target, "#") {
		ordinal, err := strconv.ParseUint(target[1:], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("malformed forwarder ordinal %q: %w", forward, process.ErrSymbolNotFound)
		}
		return resolveExportOrdinal(mem, modules, base, uint32(ordinal), depth)
	}

	return resolveExport(mem, modules, base, target, depth)
}

func resolveExportOrdinal(mem process.MemoryReader, modules process.ModuleResolver, base process.Address, ordinal uint32, depth int) (process.Address, error) {
	if depth > maxForwardDepth {
		return 0, fmt.Errorf("forwarder chain too deep for ordinal %d: %w", ordinal, process.ErrSymbolNotFound)
	}

	view, err := readExportView(mem, base)
	if err != nil {
		return 0, err
	}

	ordinalBase, ok := view.u32(view.va + expBase)
	if !ok || ordinal < ordinalBase {
		return 0, fmt.Errorf("ordinal %d: %w", ordinal, process.ErrSymbolNotFound)
	}

	return resolveFunction(mem, modules, view, uint16(ordinal-ordinalBase), depth)
}
