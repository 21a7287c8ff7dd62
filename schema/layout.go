package schema

import (
	"fmt"

	"github.com/bruns6077/cs2-dumper/process"
)

// The foreign structure shapes live in the descriptor tables below and,
// for the class-binding hash pool, in hash.go, pinned to the schema
// system build the dumper targets.

type kind int

const (
	kindPointer kind = iota
	kindUINT16
	kindINT32
	kindInlineString  // NUL-terminated bytes stored inside the structure
	kindStringPointer // pointer to NUL-terminated bytes
	kindEmbedded      // structure stored inline, walked in place
)

type fieldDesc struct {
	offset process.Size
	kind   kind
}

// classLayout maps member names of one remote structure to descriptors.
type classLayout struct {
	name   string
	fields map[string]fieldDesc
}

func (l classLayout) desc(member string, want kind) fieldDesc {
	d, ok := l.fields[member]
	if !ok || d.kind != want {
		panic(fmt.Sprintf("schema: no %s member %q of kind %d", l.name, member, want))
	}
	return d
}

// pointer reads a pointer member, zero on failure.
func (l classLayout) pointer(mem process.Reader, base process.Address, member string) process.Address {
	return mem.ReadPOINTER2(base.Add(l.desc(member, kindPointer).offset))
}

func (l classLayout) uint16(mem process.Reader, base process.Address, member string) (uint16, error) {
	return mem.ReadUINT16(base.Add(l.desc(member, kindUINT16).offset))
}

func (l classLayout) int32(mem process.Reader, base process.Address, member string) (int32, error) {
	return mem.ReadINT32(base.Add(l.desc(member, kindINT32).offset))
}

// inlineString reads a bounded NUL-terminated member, empty on failure.
func (l classLayout) inlineString(mem process.Reader, base process.Address, member string) string {
	return mem.ReadNTS2(base.Add(l.desc(member, kindInlineString).offset), maxNameLength)
}

// embedded returns the address of a structure stored inline.
func (l classLayout) embedded(base process.Address, member string) process.Address {
	return base.Add(l.desc(member, kindEmbedded).offset)
}

// stringPointer dereferences a pointer member and reads the bounded
// NUL-terminated bytes it refers to, empty on failure.
func (l classLayout) stringPointer(mem process.Reader, base process.Address, member string) string {
	d := l.fields[member]
	if d.kind != kindStringPointer {
		panic(fmt.Sprintf("schema: no %s member %q of kind string pointer", l.name, member))
	}
	ptr := mem.ReadPOINTER2(base.Add(d.offset))
	if ptr == 0 {
		return ""
	}
	return mem.ReadNTS2(ptr, maxNameLength)
}

const (
	// Bound for every remote string read.
	maxNameLength = 256

	// SchemaClassFieldData_t entries are laid out back to back.
	fieldDataStride = 0x20

	// Caps against walking garbage when the target rearranges itself.
	maxTypeScopes = 512
	maxClasses    = 0x10000
)

var schemaSystemLayout = classLayout{
	name: "CSchemaSystem",
	fields: map[string]fieldDesc{
		"m_TypeScopes.m_nSize":     {0x190, kindINT32},
		"m_TypeScopes.m_pElements": {0x198, kindPointer},
	},
}

var typeScopeLayout = classLayout{
	name: "CSchemaSystemTypeScope",
	fields: map[string]fieldDesc{
		"m_szScopeName":   {0x8, kindInlineString},
		"m_ClassBindings": {0x5B8, kindEmbedded}, // CUtlTSHash
	},
}

// A class binding doubles as the class info record.
var classInfoLayout = classLayout{
	name: "CSchemaClassBinding",
	fields: map[string]fieldDesc{
		"m_pszName":     {0x8, kindStringPointer},
		"m_pszModule":   {0x10, kindStringPointer},
		"m_nFieldCount": {0x1C, kindUINT16},
		"m_pFields":     {0x28, kindPointer},
	},
}

var fieldDataLayout = classLayout{
	name: "SchemaClassFieldData_t",
	fields: map[string]fieldDesc{
		"m_pszName":                  {0x0, kindStringPointer},
		"m_nSingleInheritanceOffset": {0x10, kindINT32},
	},
}
