//go:build windows

package process_windows

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/bruns6077/cs2-dumper/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"golang.org/x/sys/windows"
)

const PROCESS_ALL_ACCESS = windows.STANDARD_RIGHTS_REQUIRED | windows.SYNCHRONIZE | 0xFFF

// WindowsProcess implements the process.Process interface on top of the
// Toolhelp32 snapshot and ReadProcessMemory APIs. It owns the one
// long-lived process handle; Close releases it exactly once.
type WindowsProcess struct {
	pid    process.ProcessID
	handle windows.Handle
	log    *logger.Logger
	mu     sync.Mutex
}

var _ process.Process = (*WindowsProcess)(nil)

// New creates a new WindowsProcess instance
func New() *WindowsProcess {
	return &WindowsProcess{
		log: logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open")),
	}
}

// FindPID returns the PID of the first running process whose executable
// image name equals name.
func FindPID(name string) (process.ProcessID, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0, fmt.Errorf("CreateToolhelp32Snapshot: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	// The entry produced by Process32First is an entry like any other;
	// testing only the Process32Next results would drop it.
	for err = windows.Process32First(snapshot, &entry); err == nil; err = windows.Process32Next(snapshot, &entry) {
		if windows.UTF16ToString(entry.ExeFile[:]) == name {
			return process.ProcessID(entry.ProcessID), nil
		}
	}
	if err != windows.ERROR_NO_MORE_FILES {
		return 0, fmt.Errorf("Process32Next: %w", err)
	}

	return 0, fmt.Errorf("%q: %w", name, process.ErrProcessNotFound)
}

// Attach resolves the PID of the named process image and opens it.
func (p *WindowsProcess) Attach(name string) error {
	pid, err := FindPID(name)
	if err != nil {
		return err
	}
	return p.Open(pid)
}

func (p *WindowsProcess) Open(pid process.ProcessID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != 0 {
		return fmt.Errorf("pid %d already open", p.pid)
	}

	handle, err := windows.OpenProcess(PROCESS_ALL_ACCESS, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("OpenProcess: %w", err)
	}

	p.pid = pid
	p.handle = handle
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))

	p.log.Infoln("Process opened")
	return nil
}

func (p *WindowsProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != 0 {
		if err := windows.CloseHandle(p.handle); err != nil {
			return fmt.Errorf("CloseHandle: %w", err)
		}
		p.handle = 0
	}

	p.pid = 0
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))
	p.log.Infoln("Process closed")

	return nil
}

func (p *WindowsProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *WindowsProcess) session() (windows.Handle, process.ProcessID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return 0, 0, process.ErrProcessNotOpen
	}
	return p.handle, p.pid, nil
}

func (p *WindowsProcess) ReadMemory(addr process.Address, size process.Size) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	handle, _, err := p.session()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	var bytesRead uintptr
	if err := windows.ReadProcessMemory(handle, uintptr(addr), &buf[0], uintptr(size), &bytesRead); err != nil {
		return nil, fmt.Errorf("ReadProcessMemory at %s: %w", addr.ToString(), err)
	}

	if bytesRead != uintptr(size) {
		return nil, fmt.Errorf("read %d of %d bytes at %s: %w", bytesRead, size, addr.ToString(), process.ErrShortRead)
	}

	return buf, nil
}

func (p *WindowsProcess) WriteMemory(addr process.Address, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	handle, _, err := p.session()
	if err != nil {
		return err
	}

	var bytesWritten uintptr
	if err := windows.WriteProcessMemory(handle, uintptr(addr), &data[0], uintptr(len(data)), &bytesWritten); err != nil {
		return fmt.Errorf("WriteProcessMemory at %s: %w", addr.ToString(), err)
	}

	if bytesWritten != uintptr(len(data)) {
		return fmt.Errorf("wrote %d of %d bytes at %s: %w", bytesWritten, len(data), addr.ToString(), process.ErrShortRead)
	}

	return nil
}
