//go:build windows

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bruns6077/cs2-dumper/offsets"
	"github.com/bruns6077/cs2-dumper/output"
	"github.com/bruns6077/cs2-dumper/process_windows"
	"github.com/bruns6077/cs2-dumper/schema"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	gops "github.com/shirou/gopsutil/v3/process"
)

func main() {
	processFlag := flag.String("process", "cs2.exe", "Image name of the target process")
	outputFlag := flag.String("output", "generated", "Directory the per-scope files are written to")
	waitFlag := flag.Duration("wait", 0, "Poll for the target process up to this long before attaching")
	flag.Parse()

	log := logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "cs2-dumper"))

	if err := os.MkdirAll(*outputFlag, 0o755); err != nil {
		log.Warn("failed to create output directory: ", err)
		os.Exit(1)
	}

	if *waitFlag > 0 {
		if err := waitForProcess(log, *processFlag, *waitFlag); err != nil {
			log.Warn(err)
			os.Exit(1)
		}
	}

	proc := process_windows.New()
	if err := proc.Attach(*processFlag); err != nil {
		log.Warn("failed to attach to process: ", err)
		logCandidates(log, *processFlag)
		os.Exit(1)
	}
	defer proc.Close()

	log.Infoln("attached to process!")

	system, err := schema.Locate(proc)
	if err != nil {
		log.Warn("failed to get schema system: ", err)
		os.Exit(1)
	}

	log.Infoln("schema system:", system.Address().ToString())

	scopes, err := system.TypeScopes()
	if err != nil {
		log.Warn("failed to enumerate type scopes: ", err)
		os.Exit(1)
	}

	for _, typeScope := range scopes {
		dumpTypeScope(log, *outputFlag, typeScope)
	}

	fetchOffsets(log, proc)

	log.Infoln("done!")
}

func dumpTypeScope(log *logger.Logger, dir string, typeScope *schema.TypeScope) {
	module := typeScope.ModuleName()
	if module == "" {
		log.Debugln("skipping unnamed type scope at", typeScope.Address().ToString())
		return
	}

	log.Infoln("generating files for", module, "...")

	scope := output.Scope{Module: module}

	for _, class := range typeScope.DeclaredClasses() {
		name := class.Name()
		if name == "" {
			continue
		}

		fields, err := class.Fields()
		if err != nil {
			log.Debugln("skipping class", name, ":", err)
			continue
		}

		scope.Classes = append(scope.Classes, output.Class{Name: name, Fields: toOutputFields(fields)})
		log.Infoln("    > generated offsets for", name)
	}

	if err := output.WriteHeader(dir, scope, time.Now()); err != nil {
		log.Warn("failed to write header for ", module, ": ", err)
	}
	if err := output.WriteJSON(dir, scope); err != nil {
		log.Warn("failed to write json for ", module, ": ", err)
	}
}

func toOutputFields(fields []schema.Field) []output.Field {
	out := make([]output.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, output.Field{Name: f.Name, Offset: f.Offset})
	}
	return out
}

func fetchOffsets(log *logger.Logger, proc *process_windows.WindowsProcess) {
	report, err := offsets.Fetch(proc)
	if err != nil {
		log.Warn("failed to fetch client offsets: ", err)
		return
	}

	for _, entry := range report.Entries {
		log.Infoln(entry.Name+":", report.Relative(entry.Address).ToString())
	}
}

// waitForProcess polls the process table until the target shows up.
func waitForProcess(log *logger.Logger, name string, timeout time.Duration) error {
	log.Infoln("waiting for", name, "...")

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if processRunning(name) {
			return nil
		}
		time.Sleep(time.Second)
	}

	return fmt.Errorf("timed out waiting for %q after %s", name, timeout)
}

func processRunning(name string) bool {
	procs, err := gops.Processes()
	if err != nil {
		return false
	}

	for _, p := range procs {
		if n, err := p.Name(); err == nil && strings.EqualFold(n, name) {
			return true
		}
	}

	return false
}

// logCandidates lists running processes with similar names so a typo in
// -process is easy to spot.
func logCandidates(log *logger.Logger, name string) {
	stem := strings.ToLower(strings.TrimSuffix(name, ".exe"))

	procs, err := gops.Processes()
	if err != nil {
		return
	}

	for _, p := range procs {
		n, err := p.Name()
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(n), stem) {
			log.Infoln("similar running process:", n, "pid", p.Pid)
		}
	}
}
