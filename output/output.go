// Package output renders the per-scope offset files under the
// generated/ directory.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Field is one emitted member offset.
type Field struct {
	Name   string
	Offset int32
}

// Class groups the emitted fields of one declared class.
type Class struct {
	Name   string
	Fields []Field
}

// Scope is everything emitted for one type scope.
type Scope struct {
	Module  string // e.g. "client.dll", used as the file stem
	Classes []Class
}

const banner = "// Created using https://github.com/bruns6077/cs2-dumper\n// %s UTC\n"

func stamp(now time.Time) string {
	return now.UTC().Format("2006-01-02 15:04:05.000000")
}

// WriteHeader writes <dir>/<module>.hpp, overwriting any previous run.
func WriteHeader(dir string, scope Scope, now time.Time) error {
	var b strings.Builder

	b.WriteString("#pragma once\n\n#include <cstddef>\n\n")
	fmt.Fprintf(&b, banner, stamp(now))
	b.WriteString("\n")

	for _, class := range scope.Classes {
		fmt.Fprintf(&b, "namespace %s {\n", class.Name)
		for _, field := range class.Fields {
			fmt.Fprintf(&b, "    constexpr std::ptrdiff_t %s = 0x%X;\n", field.Name, field.Offset)
		}
		b.WriteString("}\n\n")
	}

	name := filepath.Join(dir, scope.Module+".hpp")
	if err := os.WriteFile(name, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	return nil
}

// WriteJSON writes <dir>/<module>.json, class name to field name to
// offset, overwriting any previous run. Keys come out sorted.
func WriteJSON(dir string, scope Scope) error {
	classes := make(map[string]map[string]int32, len(scope.Classes))
	for _, class := range scope.Classes {
		fields := make(map[string]int32, len(class.Fields))
		for _, field := range class.Fields {
			fields[field.Name] = field.Offset
		}
		classes[class.Name] = fields
	}

	data, err := json.MarshalIndent(classes, "", "    ")
	if err != nil {
		return err
	}

	name := filepath.Join(dir, scope.Module+".json")
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	return nil
}
