package process_test

import (
	"testing"

	"github.com/bruns6077/cs2-dumper/internal/memtest"
	"github.com/bruns6077/cs2-dumper/process"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRIPRelative(t *testing.T) {
	mem := memtest.New()
	mem.PutU32(0x1003, 0x10)

	addr, err := process.ResolveRIPRelative(mem, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, process.Address(0x1017), addr)
}

func TestResolveRIPRelativeNegativeDisplacement(t *testing.T) {
	mem := memtest.New()
	mem.PutU32(0x1003, 0xFFFFFFE0) // -0x20

	addr, err := process.ResolveRIPRelative(mem, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, process.Address(0x1000+7-0x20), addr)
}

func TestResolveRIPRelativeReadFailure(t *testing.T) {
	_, err := process.ResolveRIPRelative(memtest.New(), 0x1000)
	assert.Error(t, err)
}

func TestResolveRelativeOtherEncoding(t *testing.T) {
	mem := memtest.New()
	mem.PutU32(0x2002, 0x100)

	addr, err := process.ResolveRelative(mem, 0x2000, 2, 6)
	require.NoError(t, err)
	assert.Equal(t, process.Address(0x2106), addr)
}

func TestAddressArithmetic(t *testing.T) {
	a := process.Address(0x1000)

	assert.Equal(t, process.Address(0x1010), a.Add(0x10))
	assert.Equal(t, process.Address(0xFF0), a.Sub(0x10))
	assert.Equal(t, "0xDEADBEEF", process.Address(0xDEADBEEF).ToString())
}
