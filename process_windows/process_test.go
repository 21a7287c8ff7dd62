//go:build windows

package process_windows

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bruns6077/cs2-dumper/pe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// attachSelf opens the test binary's own process by image name.
func attachSelf(t *testing.T) (*WindowsProcess, string) {
	t.Helper()

	exe, err := os.Executable()
	require.NoError(t, err)
	name := filepath.Base(exe)

	proc := New()
	require.NoError(t, proc.Attach(name))
	t.Cleanup(func() { proc.Close() })

	return proc, name
}

func TestAttachSelf(t *testing.T) {
	proc, name := attachSelf(t)

	assert.NotZero(t, proc.GetPID())

	base, err := proc.ModuleBase(name)
	require.NoError(t, err)
	require.NotZero(t, base)

	modules, err := proc.LoadedModules()
	require.NoError(t, err)

	found := false
	for _, module := range modules {
		if strings.EqualFold(module, name) {
			found = true
			break
		}
	}
	assert.True(t, found, "own image missing from module list")
}

func TestModuleBaseCaseInsensitive(t *testing.T) {
	proc, name := attachSelf(t)

	lower, err := proc.ModuleBase(strings.ToLower(name))
	require.NoError(t, err)
	upper, err := proc.ModuleBase(strings.ToUpper(name))
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
}

func TestReadOwnImageHeaders(t *testing.T) {
	proc, name := attachSelf(t)

	base, err := proc.ModuleBase(name)
	require.NoError(t, err)

	data, err := proc.ReadMemory(base, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{'M', 'Z'}, data)

	headers, err := pe.ReadHeaders(proc, base)
	require.NoError(t, err)
	assert.NotZero(t, headers.SizeOfImage)
}

func TestOpenTwiceFails(t *testing.T) {
	proc, _ := attachSelf(t)

	assert.Error(t, proc.Open(proc.GetPID()))
}

func TestReadRequiresOpenProcess(t *testing.T) {
	proc := New()

	_, err := proc.ReadMemory(0x1000, 8)
	assert.Error(t, err)
}
