// Package schema walks the reflection registry a Source 2 game embeds
// for its game-object classes and enumerates type scopes, declared
// classes and field offsets out of the attached process.
package schema

import (
	"fmt"

	"github.com/bruns6077/cs2-dumper/process"
)

const (
	// SystemModule is the module that owns the schema registry.
	SystemModule = "schemasystem.dll"

	// The registration site stores the registry instance through a
	// RIP-relative MOV; resolving it yields the global slot.
	systemSignature = "48 89 05 ? ? ? ? 48 83 C4 28 C3 CC CC CC CC 48 83 EC 28"
)

// Target is what locating the schema system needs from the process.
type Target interface {
	process.Reader
	process.Scanner
}

// System is the schema registry instance inside the target.
type System struct {
	mem  process.Reader
	addr process.Address
}

// NewSystem wraps a known registry instance address.
func NewSystem(mem process.Reader, addr process.Address) *System {
	return &System{mem: mem, addr: addr}
}

// Locate finds the schema registry by signature scanning SystemModule.
func Locate(target Target) (*System, error) {
	site, err := target.FindPattern(SystemModule, systemSignature)
	if err != nil {
		return nil, err
	}

	slot, err := target.ResolveRIPRelative(site)
	if err != nil {
		return nil, err
	}

	instance := target.ReadPOINTER2(slot)
	if instance == 0 {
		return nil, fmt.Errorf("schema system not yet registered at %s", slot.ToString())
	}

	return NewSystem(target, instance), nil
}

func (s *System) Address() process.Address {
	return s.addr
}

// TypeScopes enumerates the registry's type scope vector. Null entries
// are skipped.
func (s *System) TypeScopes() ([]*TypeScope, error) {
	size, err := schemaSystemLayout.int32(s.mem, s.addr, "m_TypeScopes.m_nSize")
	if err != nil {
		return nil, fmt.Errorf("read type scope count: %w", err)
	}
	if size <= 0 || size > maxTypeScopes {
		return nil, fmt.Errorf("implausible type scope count %d", size)
	}

	elements := schemaSystemLayout.pointer(s.mem, s.addr, "m_TypeScopes.m_pElements")
	if elements == 0 {
		return nil, fmt.Errorf("type scope vector has no storage")
	}

	scopes := make([]*TypeScope, 0, size)
	for i := int32(0); i < size; i++ {
		scope := s.mem.ReadPOINTER2(elements.Add(process.Size(i) * 8))
		if scope == 0 {
			continue
		}
		scopes = append(scopes, &TypeScope{mem: s.mem, addr: scope})
	}

	return scopes, nil
}

// TypeScope is a named container grouping the reflected classes of one
// target module.
type TypeScope struct {
	mem  process.Reader
	addr process.Address
}

func (t *TypeScope) Address() process.Address {
	return t.addr
}

// ModuleName returns the scope's module name, e.g. "client.dll".
func (t *TypeScope) ModuleName() string {
	return typeScopeLayout.inlineString(t.mem, t.addr, "m_szScopeName")
}

// DeclaredClasses enumerates the scope's class bindings.
func (t *TypeScope) DeclaredClasses() []*ClassInfo {
	bindings := typeScopeLayout.embedded(t.addr, "m_ClassBindings")

	elements := hashElements(t.mem, bindings, maxClasses)

	classes := make([]*ClassInfo, 0, len(elements))
	for _, addr := range elements {
		classes = append(classes, &ClassInfo{mem: t.mem, addr: addr})
	}

	return classes
}

// ClassInfo is one reflected record type.
type ClassInfo struct {
	mem  process.Reader
	addr process.Address
}

func (c *ClassInfo) Address() process.Address {
	return c.addr
}

// Name returns the declared class name, empty if unreadable.
func (c *ClassInfo) Name() string {
	return classInfoLayout.stringPointer(c.mem, c.addr, "m_pszName")
}

// Module returns the name of the module the class was declared in.
func (c *ClassInfo) Module() string {
	return classInfoLayout.stringPointer(c.mem, c.addr, "m_pszModule")
}

// Field is one named, offset-addressable member of a declared class.
type Field struct {
	Name   string
	Offset int32
}

// Fields enumerates the class's declared fields. Entries with an
// unreadable name are dropped.
func (c *ClassInfo) Fields() ([]Field, error) {
	count, err := classInfoLayout.uint16(c.mem, c.addr, "m_nFieldCount")
	if err != nil {
		return nil, fmt.Errorf("read field count of %s: %w", c.addr.ToString(), err)
	}
	if count == 0 {
		return nil, nil
	}

	base := classInfoLayout.pointer(c.mem, c.addr, "m_pFields")
	if base == 0 {
		return nil, nil
	}

	fields := make([]Field, 0, count)
	for i := uint16(0); i < count; i++ {
		addr := base.Add(process.Size(i) * fieldDataStride)

		name := fieldDataLayout.stringPointer(c.mem, addr, "m_pszName")
		if name == "" {
			continue
		}

		offset, err := fieldDataLayout.int32(c.mem, addr, "m_nSingleInheritanceOffset")
		if err != nil {
			continue
		}

		fields = append(fields, Field{Name: name, Offset: offset})
	}

	return fields, nil
}
