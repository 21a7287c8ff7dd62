// Package offsets locates a fixed set of client globals by signature
// scanning and reports them relative to the client module base.
package offsets

import (
	"fmt"

	"github.com/bruns6077/cs2-dumper/process"
)

// ClientModule is the module the fixed signatures live in.
const ClientModule = "client.dll"

const (
	entityListSignature  = "48 8B 0D ? ? ? ? 48 89 7C 24 ? 8B FA C1 EB"
	localPlayerSignature = "48 8B 0D ? ? ? ? F2 0F 11 44 24 ? F2 41 0F 10 00"
	viewMatrixSignature  = "48 8D 0D ? ? ? ? 48 C1 E0 06"

	// The local player signature lands on a pointer to a controller
	// array; the controller itself sits one dereference plus 0x50 in.
	localPlayerAdjust = 0x50
)

// Target is what fetching the globals needs from the process.
type Target interface {
	process.Reader
	process.Scanner
	process.ModuleResolver
}

// Entry is one resolved global.
type Entry struct {
	Name    string
	Address process.Address // absolute, 0 when the scan degraded
}

// Report holds the resolved globals of one run.
type Report struct {
	ModuleBase process.Address
	Entries    []Entry
}

// Relative converts an absolute address to a module-relative offset,
// keeping the zero sentinel.
func (r *Report) Relative(addr process.Address) process.Address {
	if addr == 0 {
		return 0
	}
	return addr - r.ModuleBase
}

// Fetch scans ClientModule for the fixed signatures. A global that
// cannot be resolved is reported as zero; only a missing module base is
// an error.
func Fetch(target Target) (*Report, error) {
	base, err := target.ModuleBase(ClientModule)
	if err != nil {
		return nil, fmt.Errorf("get %s base: %w", ClientModule, err)
	}

	return &Report{
		ModuleBase: base,
		Entries: []Entry{
			{Name: "entity list", Address: entityList(target)},
			{Name: "local player controller", Address: localPlayer(target)},
			{Name: "view matrix", Address: viewMatrix(target)},
		},
	}, nil
}

// ripTarget scans for a signature and follows its RIP-relative
// displacement, zero when either step degrades.
func ripTarget(target Target, signature string) process.Address {
	site, err := target.FindPattern(ClientModule, signature)
	if err != nil {
		return 0
	}

	addr, err := target.ResolveRIPRelative(site)
	if err != nil {
		return 0
	}

	return addr
}

func entityList(target Target) process.Address {
	return ripTarget(target, entityListSignature)
}

func localPlayer(target Target) process.Address {
	addr := ripTarget(target, localPlayerSignature)
	if addr == 0 {
		return 0
	}

	controller, err := target.ReadUINT64(addr)
	if err != nil || controller == 0 {
		return 0
	}

	return process.Address(controller).Add(localPlayerAdjust)
}

func viewMatrix(target Target) process.Address {
	return ripTarget(target, viewMatrixSignature)
}
