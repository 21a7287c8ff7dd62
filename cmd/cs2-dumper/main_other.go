//go:build !windows

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "cs2-dumper only runs on Windows")
	os.Exit(1)
}
