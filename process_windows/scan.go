//go:build windows

package process_windows

import (
	"fmt"

	"github.com/bruns6077/cs2-dumper/pattern"
	"github.com/bruns6077/cs2-dumper/pe"
	"github.com/bruns6077/cs2-dumper/process"
)

// FindPattern scans the named module's mapped image for the first
// occurrence of the signature and returns its absolute address.
func (p *WindowsProcess) FindPattern(moduleName string, signature string) (process.Address, error) {
	pat, err := pattern.Parse(signature)
	if err != nil {
		return 0, err
	}

	base, err := p.ModuleBase(moduleName)
	if err != nil {
		return 0, err
	}

	headers, err := pe.ReadHeaders(p, base)
	if err != nil {
		return 0, err
	}

	image, err := p.ReadMemory(base, process.Size(headers.SizeOfImage))
	if err != nil {
		return 0, fmt.Errorf("read image of %s: %w", moduleName, err)
	}

	index := pat.Find(image)
	if index < 0 {
		return 0, fmt.Errorf("%q in %s: %w", pat.String(), moduleName, process.ErrPatternNotFound)
	}

	addr := base.Add(process.Size(index))
	p.log.Debugln("pattern", pat.String(), "matched in", moduleName, "at", addr.ToString())

	return addr, nil
}

// ResolveRIPRelative follows the disp32 of the 7-byte RIP-relative
// instruction at addr.
func (p *WindowsProcess) ResolveRIPRelative(addr process.Address) (process.Address, error) {
	return process.ResolveRIPRelative(p, addr)
}

// ResolveExport resolves an exported symbol of the module at base,
// chasing forwarders through the loaded module list.
func (p *WindowsProcess) ResolveExport(base process.Address, symbol string) (process.Address, error) {
	return pe.ResolveExport(p, p, base, symbol)
}
