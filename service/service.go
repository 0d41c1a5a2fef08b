package service

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/kgrange/thumb-emulator/config"
	"github.com/kgrange/thumb-emulator/parser"
	"github.com/kgrange/thumb-emulator/vm"
)

var serviceLog *log.Logger

func init() {
	// Debug logging is enabled via environment variable; disabled by default.
	if os.Getenv("THUMB_EMULATOR_DEBUG") != "" {
		logPath := filepath.Join(os.TempDir(), "thumb-emulator-service-debug.log")
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304 -- fixed filename in temp dir
		if err != nil {
			serviceLog = log.New(os.Stderr, "SERVICE: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		} else {
			serviceLog = log.New(f, "SERVICE: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		}
	} else {
		serviceLog = log.New(io.Discard, "", 0)
	}
}

// Host owns the process-wide Processor, Program and KillSwitch singletons,
// each behind its own mutex, and exposes the command surface the frontends
// drive.
//
// Lock ordering: processor -> program -> kill switch. Guards are released as
// early as possible; in particular Compile drops the processor guard before
// taking the program guard, so display commands can read the processor while
// a long compile holds the program.
type Host struct {
	procMu sync.Mutex
	proc   *vm.Processor

	progMu sync.Mutex
	prog   *vm.Program

	kill *vm.KillSwitch

	maxSteps uint64
}

// NewHost creates a host with freshly reset singletons.
func NewHost(settings *config.Settings) *Host {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	return &Host{
		proc:     vm.NewProcessor(),
		prog:     vm.NewProgram(),
		kill:     &vm.KillSwitch{},
		maxSteps: settings.Execution.MaxSteps,
	}
}

// Compile assembles every file named by the project manifest in <dirPath>
// into the shared program. breakpoints maps file names to 1-based line
// numbers. It returns nil on success or the batched compile diagnostics.
func (h *Host) Compile(dirPath string, breakpoints map[string][]int) []string {
	manifest, errList := config.LoadManifest(dirPath)
	if errList != nil {
		return errList
	}
	files, errList := manifest.ReadContents()
	if errList != nil {
		return errList
	}
	serviceLog.Printf("compile %s: %d file(s), delay %dms", dirPath, len(files), manifest.Delay)

	h.procMu.Lock()
	h.proc.Reset()
	h.procMu.Unlock()

	h.kill.Reset()

	h.progMu.Lock()
	defer h.progMu.Unlock()
	h.prog.Reset(manifest.Delay)

	errs := parser.NewCompileErr()

	// Pass 1: global labels across all files.
	labels := parser.ScanGlobals(files, errs)

	// String-valued labels are shared across files; slots offset into the
	// program's growing pool.
	stringLabels := make(map[string]int)
	var itBlock vm.ITBlock
	pc := 0

	for _, file := range files {
		errs.SetFile(file.Name)
		itBlock.Clear()

		newStrings, newStringLabels := labels.ScanLocals(file, &pc)
		for name, slot := range newStringLabels {
			stringLabels[name] = slot + len(h.prog.StringPool)
		}
		h.prog.StringPool = append(h.prog.StringPool, newStrings...)

		for i, raw := range strings.Split(file.Content, "\n") {
			lineNumber := i + 1
			errs.SetLine(lineNumber)

			original := parser.PreprocessLine(raw)
			line := strings.ToLower(original)
			isBreakpoint := slices.Contains(breakpoints[file.Name], lineNumber)

			// skip blanks, labels and directives
			if line == "" || strings.HasSuffix(line, ":") || strings.HasPrefix(line, ".") {
				continue
			}

			if parser.IsIfThenBlock(line) {
				if msgs := itBlock.HandleStatement(line); msgs != nil {
					// A broken IT statement makes its body unverifiable;
					// stop and return everything collected so far.
					errs.Extend(msgs)
					return errs.Result()
				}
				continue
			}

			if mnemonic, ext, ok := vm.FindMnemonic(line); ok {
				status, msgs := itBlock.Status(ext.CC, ext.HasCC)
				ext.ITStatus = status
				errs.Extend(msgs)

				if msgs := h.prog.CompileInstruction(mnemonic, ext, file.Name, lineNumber,
					isBreakpoint, line, labels, stringLabels); msgs != nil {
					errs.Extend(msgs)
				}
			} else {
				errs.Push("Invalid instruction.")
			}
		}

		if itBlock.Pending() {
			errs.Push("IT block does not have all conditions covered.")
		}
	}
	return errs.Result()
}

// Run drives the program from the current PC until completion, a kill, or an
// input request. stdInput answers a previous input request and lands in
// R[0].
func (h *Host) Run(stdInput *int32) (string, vm.InputStatus, vm.DebugStatus, error) {
	h.procMu.Lock()
	defer h.procMu.Unlock()
	h.progMu.Lock()
	defer h.progMu.Unlock()

	return h.prog.Run(h.proc, h.kill, stdInput, h.maxSteps)
}

// DebugResult is the outcome of a single-step command.
type DebugResult struct {
	FileName   string
	LineNumber int
	Status     vm.DebugStatus
	Input      vm.InputStatus
	StdOut     string
}

// DebugRun executes exactly one line, sleeping the configured delay first.
func (h *Host) DebugRun(stdInput *int32) (DebugResult, error) {
	h.procMu.Lock()
	defer h.procMu.Unlock()
	h.progMu.Lock()
	defer h.progMu.Unlock()

	fileName, lineNumber, status, input, stdOut, err := h.prog.DebugRun(h.proc, h.kill, stdInput)
	return DebugResult{
		FileName:   fileName,
		LineNumber: lineNumber,
		Status:     status,
		Input:      input,
		StdOut:     stdOut,
	}, err
}

// KillProcess raises the shared kill switch; the running program observes it
// at its next step and stops.
func (h *Host) KillProcess() {
	h.kill.Kill()
}

// Program returns the shared program (for tests and read-only frontend use
// between commands).
func (h *Host) Program() *vm.Program {
	h.progMu.Lock()
	defer h.progMu.Unlock()
	return h.prog
}
