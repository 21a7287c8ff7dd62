package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testScope = Scope{
	Module: "client.dll",
	Classes: []Class{
		{
			Name: "C_BaseEntity",
			Fields: []Field{
				{Name: "m_iHealth", Offset: 0x334},
				{Name: "m_vecOrigin", Offset: 0x88},
			},
		},
		{Name: "EmptyTestScript", Fields: []Field{{Name: "m_hTest", Offset: 0x10}}},
	},
}

func TestWriteHeader(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2023, 10, 14, 5, 19, 9, 271971000, time.UTC)

	require.NoError(t, WriteHeader(dir, testScope, now))

	data, err := os.ReadFile(filepath.Join(dir, "client.dll.hpp"))
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "#pragma once\n\n#include <cstddef>\n")
	assert.Contains(t, text, "// 2023-10-14 05:19:09.271971 UTC\n")
	assert.Contains(t, text, "namespace C_BaseEntity {\n    constexpr std::ptrdiff_t m_iHealth = 0x334;\n    constexpr std::ptrdiff_t m_vecOrigin = 0x88;\n}\n")
	assert.Contains(t, text, "namespace EmptyTestScript {\n    constexpr std::ptrdiff_t m_hTest = 0x10;\n}\n")
}

func TestWriteHeaderOverwrites(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "client.dll.hpp")
	require.NoError(t, os.WriteFile(name, []byte("stale"), 0o644))

	require.NoError(t, WriteHeader(dir, testScope, time.Now()))

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteJSON(dir, testScope))

	data, err := os.ReadFile(filepath.Join(dir, "client.dll.json"))
	require.NoError(t, err)

	var decoded map[string]map[string]int32
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, map[string]map[string]int32{
		"C_BaseEntity":    {"m_iHealth": 0x334, "m_vecOrigin": 0x88},
		"EmptyTestScript": {"m_hTest": 0x10},
	}, decoded)
}
