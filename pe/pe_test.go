package pe_test

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/bruns6077/cs2-dumper/internal/memtest"
	"github.com/bruns6077/cs2-dumper/pe"
	"github.com/bruns6077/cs2-dumper/process"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testExportVA   = 0x2000
	testExportSize = 0x400
	testImageSize  = 0x10000
)

// moduleExport describes one export of a synthesized image. Either RVA
// is set (a regular export) or Forward names "Module.Symbol".
type moduleExport struct {
	Name    string
	RVA     uint32
	Forward string
}

// buildModule synthesizes a PE32+ image with the given exports into mem.
func buildModule(mem *memtest.Memory, base process.Address, ordinalBase uint32, exports []moduleExport) {
	hdr := make([]byte, pe.HeaderSize)
	hdr[0] = 'M'
	hdr[1] = 'Z'

	const lfanew = 0x80
	binary.LittleEndian.PutUint32(hdr[0x3C:], lfanew)
	binary.LittleEndian.PutUint32(hdr[lfanew:], 0x00004550)
	binary.LittleEndian.PutUint16(hdr[lfanew+4:], 0x8664)

	const opt = lfanew + 24
	binary.LittleEndian.PutUint16(hdr[opt:], 0x20B)
	binary.LittleEndian.PutUint32(hdr[opt+56:], testImageSize)
	binary.LittleEndian.PutUint32(hdr[opt+108:], 16) // NumberOfRvaAndSizes
	binary.LittleEndian.PutUint32(hdr[opt+112:], testExportVA)
	binary.LittleEndian.PutUint32(hdr[opt+116:], testExportSize)

	mem.Put(base, hdr)

	dir := make([]byte, testExportSize)
	count := uint32(len(exports))

	funcTable := uint32(0x28)
	nameTable := funcTable + 4*count
	ordTable := nameTable + 4*count
	strPool := ordTable + 2*count

	binary.LittleEndian.PutUint32(dir[0x10:], ordinalBase)
	binary.LittleEndian.PutUint32(dir[0x14:], count)
	binary.LittleEndian.PutUint32(dir[0x18:], count)
	binary.LittleEndian.PutUint32(dir[0x1C:], testExportVA+funcTable)
	binary.LittleEndian.PutUint32(dir[0x20:], testExportVA+nameTable)
	binary.LittleEndian.PutUint32(dir[0x24:], testExportVA+ordTable)

	writeString := func(s string) uint32 {
		rva := testExportVA + strPool
		copy(dir[strPool:], s)
		strPool += uint32(len(s)) + 1
		return rva
	}

	for i, export := range exports {
		fnRVA := export.RVA
		if export.Forward != "" {
			// A function RVA inside the directory range marks a forwarder.
			fnRVA = writeString(export.Forward)
		}

		binary.LittleEndian.PutUint32(dir[funcTable+uint32(i)*4:], fnRVA)
		binary.LittleEndian.PutUint32(dir[nameTable+uint32(i)*4:], writeString(export.Name))
		binary.LittleEndian.PutUint16(dir[ordTable+uint32(i)*2:], uint16(i))
	}

	mem.Put(base.Add(testExportVA), dir)
}

type fakeModules map[string]process.Address

func (m fakeModules) ModuleBase(name string) (process.Address, error) {
	for module, base := range m {
		if strings.EqualFold(module, name) {
			return base, nil
		}
	}
	return 0, process.ErrModuleNotFound
}

func (m fakeModules) LoadedModules() ([]string, error) {
	modules := make([]string, 0, len(m))
	for module := range m {
		modules = append(modules, module)
	}
	return modules, nil
}

func TestParseHeaders(t *testing.T) {
	mem := memtest.New()
	buildModule(mem, 0x140000000, 1, nil)

	headers, err := pe.ReadHeaders(mem, 0x140000000)
	require.NoError(t, err)
	assert.Equal(t, uint32(testImageSize), headers.SizeOfImage)
	assert.Equal(t, uint32(testExportVA), headers.ExportDirectory.VirtualAddress)
	assert.Equal(t, uint32(testExportSize), headers.ExportDirectory.Size)
}

func TestParseHeadersRejectsBadMagic(t *testing.T) {
	buf := make([]byte, pe.HeaderSize)
	buf[0] = 'Z'
	buf[1] = 'M'

	_, err := pe.ParseHeaders(buf)
	assert.ErrorIs(t, err, process.ErrBadImage)
}

func TestParseHeadersRejectsBadNTSignature(t *testing.T) {
	buf := make([]byte, pe.HeaderSize)
	buf[0] = 'M'
	buf[1] = 'Z'
	binary.LittleEndian.PutUint32(buf[0x3C:], 0x80)

	_, err := pe.ParseHeaders(buf)
	assert.ErrorIs(t, err, process.ErrBadImage)
}

func TestResolveExport(t *testing.T) {
	mem := memtest.New()
	base := process.Address(0x140000000)
	buildModule(mem, base, 1, []moduleExport{
		{Name: "CreateInterface", RVA: 0x5000},
		{Name: "SchemaSystem_001", RVA: 0x6230},
	})

	addr, err := pe.ResolveExport(mem, nil, base, "SchemaSystem_001")
	require.NoError(t, err)
	assert.Equal(t, base.Add(0x6230), addr)
}

func TestResolveExportMissingSymbol(t *testing.T) {
	mem := memtest.New()
	base := process.Address(0x140000000)
	buildModule(mem, base, 1, []moduleExport{{Name: "CreateInterface", RVA: 0x5000}})

	_, err := pe.ResolveExport(mem, nil, base, "NoSuchSymbol")
	assert.ErrorIs(t, err, process.ErrSymbolNotFound)
}

func TestResolveExportNoExportDirectory(t *testing.T) {
	mem := memtest.New()
	hdr := make([]byte, pe.HeaderSize)
	hdr[0] = 'M'
	hdr[1] = 'Z'
	binary.LittleEndian.PutUint32(hdr[0x3C:], 0x80)
	binary.LittleEndian.PutUint32(hdr[0x80:], 0x00004550)
	binary.LittleEndian.PutUint16(hdr[0x80+24:], 0x20B)
	binary.LittleEndian.PutUint32(hdr[0x80+24+108:], 16)
	mem.Put(0x140000000, hdr)

	_, err := pe.ResolveExport(mem, nil, 0x140000000, "Anything")
	assert.ErrorIs(t, err, process.ErrSymbolNotFound)
}

func TestResolveForwardedExportWithoutResolver(t *testing.T) {
	mem := memtest.New()
	base := process.Address(0x140000000)
	buildModule(mem, base, 1, []moduleExport{{Name: "FwdSym", Forward: "other.RealSym"}})

	_, err := pe.ResolveExport(mem, nil, base, "FwdSym")
	assert.ErrorIs(t, err, process.ErrSymbolNotFound)
}

func TestResolveForwardedExportByName(t *testing.T) {
	mem := memtest.New()
	base := process.Address(0x140000000)
	otherBase := process.Address(0x7FF800000000)

	buildModule(mem, base, 1, []moduleExport{{Name: "FwdSym", Forward: "other.RealSym"}})
	buildModule(mem, otherBase, 1, []moduleExport{{Name: "RealSym", RVA: 0x7770}})

	modules := fakeModules{"other.dll": otherBase}

	addr, err := pe.ResolveExport(mem, modules, base, "FwdSym")
	require.NoError(t, err)
	assert.Equal(t, otherBase.Add(0x7770), addr)
}

func TestResolveForwardedExportByOrdinal(t *testing.T) {
	mem := memtest.New()
	base := process.Address(0x140000000)
	otherBase := process.Address(0x7FF800000000)

	buildModule(mem, base, 1, []moduleExport{{Name: "FwdSym", Forward: "other.#11"}})
	buildModule(mem, otherBase, 10, []moduleExport{
		{Name: "Pad", RVA: 0x1100},
		{Name: "Target", RVA: 0x3210},
	})

	modules := fakeModules{"other.dll": otherBase}

	addr, err := pe.ResolveExport(mem, modules, base, "FwdSym")
	require.NoError(t, err)
	assert.Equal(t, otherBase.Add(0x3210), addr)
}

func TestResolveForwardedExportMissingModule(t *testing.T) {
	mem := memtest.New()
	base := process.Address(0x140000000)
	buildModule(mem, base, 1, []moduleExport{{Name: "FwdSym", Forward: "gone.RealSym"}})

	_, err := pe.ResolveExport(mem, fakeModules{}, base, "FwdSym")
	assert.ErrorIs(t, err, process.ErrModuleNotFound)
}
