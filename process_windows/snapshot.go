//go:build windows

package process_windows

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/bruns6077/cs2-dumper/process"

	"golang.org/x/sys/windows"
)

// moduleSnapshot walks the module list of the attached process and calls
// visit for every entry until it returns false.
func (p *WindowsProcess) moduleSnapshot(visit func(name string, base process.Address) bool) error {
	_, pid, err := p.session()
	if err != nil {
		return err
	}

	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(pid))
	if err != nil {
		return fmt.Errorf("CreateToolhelp32Snapshot: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	// As in FindPID, the Module32First entry counts.
	for err = windows.Module32First(snapshot, &entry); err == nil; err = windows.Module32Next(snapshot, &entry) {
		if !visit(windows.UTF16ToString(entry.Module[:]), process.Address(entry.ModBaseAddr)) {
			return nil
		}
	}
	if err != windows.ERROR_NO_MORE_FILES {
		return fmt.Errorf("Module32Next: %w", err)
	}

	return nil
}

// ModuleBase returns the base address of the first loaded module whose
// name equals name, compared case-insensitively.
func (p *WindowsProcess) ModuleBase(name string) (process.Address, error) {
	var found process.Address

	err := p.moduleSnapshot(func(module string, base process.Address) bool {
		if strings.EqualFold(module, name) {
			found = base
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}

	if found == 0 {
		return 0, fmt.Errorf("%q: %w", name, process.ErrModuleNotFound)
	}

	return found, nil
}

// LoadedModules returns the names of all loaded modules in snapshot order.
func (p *WindowsProcess) LoadedModules() ([]string, error) {
	var modules []string

	err := p.moduleSnapshot(func(module string, base process.Address) bool {
		modules = append(modules, module)
		return true
	})
	if err != nil {
		return nil, err
	}

	return modules, nil
}
