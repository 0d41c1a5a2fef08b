package debugger

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/kgrange/thumb-emulator/service"
	"github.com/kgrange/thumb-emulator/vm"
)

// numberFormats cycled by the format key.
var numberFormats = []string{"hexadecimal", "signed", "unsigned", "binary"}

// TUI is the interactive single-step debugger. It drives the host command
// surface: the step, run and kill keys map onto the debug_run, run and kill
// commands (the format and quit keys stay local), and the panes render the
// display command snapshots.
type TUI struct {
	Host        *service.Host
	Breakpoints *BreakpointManager
	App         *tview.Application

	MainLayout *tview.Flex

	SourceView   *tview.TextView
	RegisterView *tview.TextView
	MemoryView   *tview.TextView
	OutputView   *tview.TextView
	StatusBar    *tview.TextView
	InputField   *tview.InputField

	// project being debugged
	DirPath string

	// source cache per file for the source pane
	sources map[string][]string

	// execution state
	currentFile string
	currentLine int
	pendingIn   vm.InputStatus
	formatIdx   int
	ended       bool
}

// NewTUI creates the debugger interface for a compiled project directory.
func NewTUI(host *service.Host, breakpoints *BreakpointManager, dirPath string) *TUI {
	t := &TUI{
		Host:        host,
		Breakpoints: breakpoints,
		App:         tview.NewApplication(),
		DirPath:     dirPath,
		sources:     make(map[string][]string),
	}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()

	return t
}

// initializeViews creates all the view panels
func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.RegisterView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.StatusBar = tview.NewTextView().SetDynamicColors(true)
	t.StatusBar.SetText("[yellow]F10[-] step  [yellow]F5[-] run  [yellow]k[-] kill  [yellow]f[-] format  [yellow]q[-] quit")

	t.InputField = tview.NewInputField().
		SetLabel("input> ").
		SetFieldWidth(0)
	t.InputField.SetBorder(true).SetTitle(" Program Input ")
	t.InputField.SetDoneFunc(t.handleInput)
}

// buildLayout constructs the TUI layout
func (t *TUI) buildLayout() {
	rightPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 20, 0, false).
		AddItem(t.MemoryView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.SourceView, 0, 2, false).
		AddItem(rightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.InputField, 3, 0, false).
		AddItem(t.StatusBar, 1, 0, false)
}

// setupKeyBindings sets up keyboard shortcuts
func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if t.App.GetFocus() == t.InputField {
			return event
		}
		switch event.Key() {
		case tcell.KeyF10:
			t.stepOnce(nil)
			return nil
		case tcell.KeyF5:
			t.runToEnd(nil)
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		}
		switch event.Rune() {
		case 's':
			t.stepOnce(nil)
			return nil
		case 'r':
			t.runToEnd(nil)
			return nil
		case 'k':
			t.Host.KillProcess()
			t.appendOutput("[red]kill requested[-]\n")
			return nil
		case 'f':
			t.formatIdx = (t.formatIdx + 1) % len(numberFormats)
			t.refreshState()
			return nil
		case 'q':
			t.App.Stop()
			return nil
		}
		return event
	})
}

// Run compiles the project with the current breakpoints and enters the event
// loop.
func (t *TUI) Run() error {
	if errs := t.Host.Compile(t.DirPath, t.Breakpoints.Snapshot()); errs != nil {
		return fmt.Errorf("compile failed:\n%s", strings.Join(errs, "\n"))
	}
	t.refreshState()
	t.App.SetRoot(t.MainLayout, true)
	return t.App.Run()
}

// stepOnce executes one line through the debug_run command.
func (t *TUI) stepOnce(stdInput *int32) {
	if t.ended || t.pendingIn != vm.InputNone && stdInput == nil {
		return
	}
	result, err := t.Host.DebugRun(stdInput)
	t.pendingIn = vm.InputNone
	if result.StdOut != "" {
		t.appendOutput(result.StdOut)
	}
	if err != nil {
		t.appendOutput(fmt.Sprintf("[red]%s[-]\n", err))
		t.ended = true
		t.refreshState()
		return
	}
	t.currentFile, t.currentLine = result.FileName, result.LineNumber

	switch result.Status {
	case vm.DebugEnd:
		t.ended = true
		t.appendOutput("[green]program finished[-]\n")
	case vm.DebugBreakpoint:
		t.appendOutput(fmt.Sprintf("[yellow]breakpoint at %s:%d[-]\n", result.FileName, result.LineNumber))
	}
	if result.Input != vm.InputNone {
		t.pendingIn = result.Input
		t.promptInput()
	}
	t.refreshState()
}

// runToEnd drives the run command until completion, a kill, or an input
// request.
func (t *TUI) runToEnd(stdInput *int32) {
	if t.ended || t.pendingIn != vm.InputNone && stdInput == nil {
		return
	}
	stdOut, input, _, err := t.Host.Run(stdInput)
	t.pendingIn = vm.InputNone
	if stdOut != "" {
		t.appendOutput(stdOut)
	}
	if err != nil {
		t.appendOutput(fmt.Sprintf("[red]%s[-]\n", err))
		t.ended = true
	} else if input != vm.InputNone {
		t.pendingIn = input
		t.promptInput()
	} else {
		t.ended = true
		t.appendOutput("[green]program finished[-]\n")
	}
	t.refreshState()
}

// promptInput focuses the input field for a getchar/getnumber request.
func (t *TUI) promptInput() {
	label := "number> "
	if t.pendingIn == vm.InputGetChar {
		label = "char> "
	}
	t.InputField.SetLabel(label)
	t.App.SetFocus(t.InputField)
}

// handleInput feeds the entered value back into the suspended program.
func (t *TUI) handleInput(key tcell.Key) {
	if key != tcell.KeyEnter || t.pendingIn == vm.InputNone {
		return
	}
	text := t.InputField.GetText()
	t.InputField.SetText("")

	var value int32
	if t.pendingIn == vm.InputGetChar {
		runes := []rune(text)
		if len(runes) == 0 {
			return
		}
		value = int32(runes[0])
	} else {
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
		if err != nil {
			t.appendOutput("[red]not a number, try again[-]\n")
			return
		}
		value = int32(n)
	}
	t.App.SetFocus(t.SourceView)
	t.stepOnce(&value)
}

// appendOutput appends text to the output pane.
func (t *TUI) appendOutput(text string) {
	fmt.Fprint(t.OutputView, tview.Escape(text))
}

// refreshState redraws the register, memory and source panes.
func (t *TUI) refreshState() {
	format := numberFormats[t.formatIdx]

	cpu := t.Host.DisplayCPU(format)
	var regs strings.Builder
	names := []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
		"r8", "r9", "r10", "r11", "r12", "sp", "lr", "pc"}
	for i, v := range cpu.R {
		fmt.Fprintf(&regs, "[aqua]%-3s[-] %s\n", names[i], v)
	}
	fmt.Fprintf(&regs, "\n[aqua]N[-]=%t [aqua]Z[-]=%t\n[aqua]C[-]=%t [aqua]V[-]=%t\n", cpu.N, cpu.Z, cpu.C, cpu.V)
	t.RegisterView.SetText(regs.String())

	mem := t.Host.DisplayMemory(format)
	var dump strings.Builder
	perRow := 8
	for row := 0; row < len(mem.Bytes)/perRow; row++ {
		fmt.Fprintf(&dump, "[aqua]%4d[-]", row*perRow)
		for col := 0; col < perRow; col++ {
			fmt.Fprintf(&dump, " %s", mem.Bytes[row*perRow+col])
		}
		dump.WriteString("\n")
	}
	t.MemoryView.SetText(dump.String())
	t.MemoryView.SetTitle(fmt.Sprintf(" Memory (SP=%d) ", mem.SP))

	t.renderSource()
}

// renderSource shows the current file with the next line highlighted and
// breakpoints marked.
func (t *TUI) renderSource() {
	if t.currentFile == "" {
		t.SourceView.SetText("(step to begin)")
		return
	}
	lines, ok := t.sources[t.currentFile]
	if !ok {
		content, err := os.ReadFile(t.DirPath + t.currentFile) // #nosec G304 -- project source chosen by the user
		if err != nil {
			t.SourceView.SetText(fmt.Sprintf("cannot read %s", t.currentFile))
			return
		}
		lines = strings.Split(string(content), "\n")
		t.sources[t.currentFile] = lines
	}

	var sb strings.Builder
	for i, line := range lines {
		lineNumber := i + 1
		marker := " "
		if t.Breakpoints.Has(t.currentFile, lineNumber) {
			marker = "[red]●[-]"
		}
		if lineNumber == t.currentLine {
			fmt.Fprintf(&sb, "%s[black:yellow]%4d %s[-:-]\n", marker, lineNumber, tview.Escape(line))
		} else {
			fmt.Fprintf(&sb, "%s[grey]%4d[-] %s\n", marker, lineNumber, tview.Escape(line))
		}
	}
	t.SourceView.SetTitle(fmt.Sprintf(" %s ", t.currentFile))
	t.SourceView.SetText(sb.String())
}
