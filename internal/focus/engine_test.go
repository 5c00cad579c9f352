package focus

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/focusctl/internal/protocol"
	"github.com/danmuck/focusctl/internal/protocol/flow"
	"github.com/danmuck/focusctl/internal/testutil/testlog"
	"github.com/danmuck/focusctl/internal/transport/loopback"
)

type countingMetrics struct {
	transitions []flow.State
	sent        int
	rejected    int
}

func (m *countingMetrics) FlowTransition(s flow.State) { m.transitions = append(m.transitions, s) }
func (m *countingMetrics) BytesSent(n int)             { m.sent += n }
func (m *countingMetrics) TokenRejected()              { m.rejected++ }

func newEngine(t *testing.T) (*Engine, *loopback.Port, *countingMetrics) {
	t.Helper()
	testlog.Start(t)
	port, err := loopback.New(64)
	if err != nil {
		t.Fatalf("loopback: %v", err)
	}
	metrics := &countingMetrics{}
	cfg := DefaultConfig()
	cfg.Pacer = port
	cfg.Metrics = metrics
	logger := testlog.Logger(t)
	cfg.Logger = &logger
	e, err := New(port, cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e, port, metrics
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(nil, DefaultConfig()); !errors.Is(err, ErrNilPort) {
		t.Fatalf("expected ErrNilPort, got %v", err)
	}
	port, _ := loopback.New(8)
	cfg := DefaultConfig()
	cfg.LineCapacity = 0
	if _, err := New(port, cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	cfg = DefaultConfig()
	cfg.Flow = flow.Config{ResumeWatermark: 32, PauseWatermark: 4}
	if _, err := New(port, cfg); !errors.Is(err, flow.ErrInvalidWatermarks) {
		t.Fatalf("expected wrapped ErrInvalidWatermarks, got %v", err)
	}
}

func TestTokenizeCommandLine(t *testing.T) {
	e, port, _ := newEngine(t)
	port.Inject("led 10 20 255 0\n")

	cmd, ok := e.ReadToken()
	if !ok || cmd != "led" {
		t.Fatalf("unexpected command %q ok=%v", cmd, ok)
	}
	if !e.InputMatchesCommand(cmd, "led") {
		t.Fatalf("command should match")
	}
	for _, want := range []uint8{10, 20, 255} {
		if e.IsEOL() {
			t.Fatalf("unexpected EOL before %d", want)
		}
		got, ok := e.ReadUint8()
		if !ok || got != want {
			t.Fatalf("read uint8: got %d ok=%v want %d", got, ok, want)
		}
	}
	if e.IsEOL() {
		t.Fatalf("unexpected EOL before last token")
	}
	last, ok := e.ReadUint8()
	if !ok || last != 0 {
		t.Fatalf("read last: got %d ok=%v", last, ok)
	}
	if !e.IsEOL() {
		t.Fatalf("expected EOL after last token")
	}
	if b, _ := e.Peek(); b != '\n' {
		t.Fatalf("newline must remain unread, got %q", b)
	}
}

func TestReadColorMissingComponent(t *testing.T) {
	e, port, _ := newEngine(t)
	port.Inject("255 0\n")
	c, ok := e.ReadColor()
	if ok {
		t.Fatalf("expected incomplete color, got %+v", c)
	}
	if c.R != 255 || c.G != 0 || c.B != 0 {
		t.Fatalf("unexpected partial color %+v", c)
	}
	if !e.IsEOL() {
		t.Fatalf("color read must stop at newline")
	}
}

func TestMalformedNumbersDefaultToZero(t *testing.T) {
	e, port, _ := newEngine(t)
	port.Inject("abc\n")
	if v, ok := e.ReadUint16(); ok || v != 0 {
		t.Fatalf("expected silent zero, got %d ok=%v", v, ok)
	}
	if v, ok := e.ReadUint8(); ok || v != 0 {
		t.Fatalf("expected silent zero at EOL, got %d ok=%v", v, ok)
	}
	if k, ok := e.ReadKey(); ok || k != 0 {
		t.Fatalf("expected silent zero key, got %d ok=%v", k, ok)
	}
}

func TestIntegerTruncation(t *testing.T) {
	e, port, _ := newEngine(t)
	port.Inject("300 70000 -1\n")
	if v, _ := e.ReadUint8(); v != 44 {
		t.Fatalf("expected 300 to wrap to 44, got %d", v)
	}
	if v, _ := e.ReadUint16(); v != 4464 {
		t.Fatalf("expected 70000 to wrap to 4464, got %d", v)
	}
	if v, _ := e.ReadUint8(); v != 255 {
		t.Fatalf("expected -1 to wrap to 255, got %d", v)
	}
}

func TestRoundTrip(t *testing.T) {
	e, port, _ := newEngine(t)
	color := protocol.Color{R: 255, G: 0, B: 128}
	key := protocol.NewKey(0x04, 0x02)
	e.Send(
		protocol.Bool(true),
		protocol.Bool(false),
		protocol.Uint8(200),
		protocol.Uint16(65535),
		protocol.ColorValue(color),
		protocol.KeyValue(key),
		protocol.Char('z'),
	)
	port.Inject(port.Output() + "\n")

	if v, ok := e.ReadBool(); !ok || !v {
		t.Fatalf("bool true: %v %v", v, ok)
	}
	if v, ok := e.ReadBool(); !ok || v {
		t.Fatalf("bool false: %v %v", v, ok)
	}
	if v, ok := e.ReadUint8(); !ok || v != 200 {
		t.Fatalf("uint8: %d %v", v, ok)
	}
	if v, ok := e.ReadUint16(); !ok || v != 65535 {
		t.Fatalf("uint16: %d %v", v, ok)
	}
	if v, ok := e.ReadColor(); !ok || v != color {
		t.Fatalf("color: %+v %v", v, ok)
	}
	if v, ok := e.ReadKey(); !ok || v != key {
		t.Fatalf("key: %d %v", v, ok)
	}
	if sep, ok := e.ReadChar(); !ok || sep != ' ' {
		t.Fatalf("expected separator before char, got %q", sep)
	}
	if v, ok := e.ReadChar(); !ok || v != 'z' {
		t.Fatalf("char: %q %v", v, ok)
	}
}

func TestVariadicSendMatchesSequentialSends(t *testing.T) {
	e, port, _ := newEngine(t)
	color := protocol.RGB(1, 2, 3)
	e.Send(protocol.Bool(true), protocol.Uint8(5), color)
	flat := port.Output()

	port.Reset()
	e.Send(protocol.Bool(true))
	e.Send(protocol.Uint8(5))
	e.Send(color)
	if seq := port.Output(); seq != flat {
		t.Fatalf("variadic %q != sequential %q", flat, seq)
	}
	if flat != "true 5 1 2 3 " {
		t.Fatalf("unexpected encoding %q", flat)
	}

	port.Reset()
	e.Send()
	if len(port.Events()) != 0 {
		t.Fatalf("empty send must not write")
	}
}

func TestEveryCharacterIsPaced(t *testing.T) {
	e, port, metrics := newEngine(t)
	e.Send(protocol.Bool(true), protocol.Uint16(1234), protocol.RGB(9, 8, 7))
	e.SendRaw(protocol.String("abc"), protocol.KeyValue(7))
	e.Println()
	e.PrintHelp("led.at", "led.mode")
	e.SendName("LEDControl")

	events := port.Events()
	chars := 0
	for i, ev := range events {
		switch ev.Kind {
		case loopback.EventByte:
			chars++
			if i+1 >= len(events) || events[i+1].Kind != loopback.EventDelay {
				t.Fatalf("byte %q at %d not followed by a delay", ev.Byte, i)
			}
			if i+2 < len(events) && events[i+2].Kind == loopback.EventDelay {
				t.Fatalf("byte %q at %d followed by more than one delay", ev.Byte, i)
			}
		case loopback.EventDelay:
			if ev.Delay != DefaultCharDelay {
				t.Fatalf("unexpected delay %v", ev.Delay)
			}
		}
	}
	if chars == 0 || chars != metrics.sent {
		t.Fatalf("chars=%d metrics=%d", chars, metrics.sent)
	}
}

func TestPrintHelpAndSendName(t *testing.T) {
	e, port, _ := newEngine(t)
	e.PrintHelp()
	if len(port.Events()) != 0 {
		t.Fatalf("empty help must not write")
	}
	e.PrintHelp("#led.at", "#led.mode")
	e.SendName("Focus")
	lines := port.Lines(false)
	want := []string{"#led.at", "#led.mode", "Focus"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected lines %q", lines)
	}
	if data := port.Lines(true); len(data) != 1 || data[0] != "Focus" {
		t.Fatalf("doc lines should be distinguishable, got %q", data)
	}
}

func TestCommandAndHelpMatching(t *testing.T) {
	e, _, _ := newEngine(t)
	if !e.InputMatchesCommand("led", "led") {
		t.Fatalf("exact match failed")
	}
	if e.InputMatchesCommand("LED", "led") || e.InputMatchesCommand("ledx", "led") || e.InputMatchesCommand("le", "led") {
		t.Fatalf("matching must be exact and case-sensitive")
	}
	if !e.InputMatchesHelp("help") || e.InputMatchesHelp("Help") || e.InputMatchesHelp("helpme") {
		t.Fatalf("help matching must be exact")
	}
}

func TestFlowControlAroundReads(t *testing.T) {
	e, port, metrics := newEngine(t)
	port.Inject(strings.Repeat("x", 40))

	for e.Available() > 0 {
		if _, ok := e.ReadChar(); !ok {
			t.Fatalf("unexpected empty read")
		}
		if e.Available() == 20 && e.FlowState() != flow.Paused {
			t.Fatalf("expected paused mid-drain")
		}
	}
	e.AfterEachCycle()

	got := port.ControlBytes()
	if string(got) != string([]byte{protocol.XOFF, protocol.XON}) {
		t.Fatalf("unexpected control bytes %v", got)
	}
	if len(metrics.transitions) != 2 || metrics.transitions[0] != flow.Paused || metrics.transitions[1] != flow.Open {
		t.Fatalf("unexpected transitions %v", metrics.transitions)
	}
	for _, ev := range port.Events() {
		if ev.Kind == loopback.EventDelay {
			t.Fatalf("flow-control bytes must not be paced")
		}
	}
}

func TestAfterEachCycleChecksBacklog(t *testing.T) {
	e, port, _ := newEngine(t)
	port.Inject(strings.Repeat("y", 32))
	e.AfterEachCycle()
	e.AfterEachCycle()
	if got := port.ControlBytes(); len(got) != 1 || got[0] != protocol.XOFF {
		t.Fatalf("expected exactly one XOFF, got %v", got)
	}
}

func TestFailedControlByteKeepsStateAndRetries(t *testing.T) {
	e, port, metrics := newEngine(t)
	boom := errors.New("link down")
	port.Inject(strings.Repeat("z", 40))
	port.FailWrites(boom)

	e.ManageFlowControl()
	if e.FlowState() != flow.Open {
		t.Fatalf("state must not change when XOFF was not written, got %s", e.FlowState())
	}
	if len(port.Written()) != 0 || len(metrics.transitions) != 0 {
		t.Fatalf("nothing should be recorded for a failed write")
	}
	if err := e.Flush(); !errors.Is(err, boom) {
		t.Fatalf("expected latched error, got %v", err)
	}

	port.FailWrites(nil)
	e.ManageFlowControl()
	if got := port.ControlBytes(); len(got) != 1 || got[0] != protocol.XOFF {
		t.Fatalf("owed XOFF should be sent on the next check, got %v", got)
	}
	if e.FlowState() != flow.Paused {
		t.Fatalf("expected paused after XOFF, got %s", e.FlowState())
	}
}

func TestOverlongTokenRejected(t *testing.T) {
	e, port, metrics := newEngine(t)
	port.Inject(strings.Repeat("k", protocol.DefaultLineCapacity+5) + " 1\n")
	if tok, ok := e.ReadToken(); ok || tok != "" {
		t.Fatalf("expected rejection, got %q", tok)
	}
	if metrics.rejected != 1 {
		t.Fatalf("expected rejection metric, got %d", metrics.rejected)
	}
	if v, ok := e.ReadUint8(); !ok || v != 1 {
		t.Fatalf("parameters after rejected token should remain readable, got %d %v", v, ok)
	}
}

func TestTransmitErrorIsLatched(t *testing.T) {
	e, port, _ := newEngine(t)
	boom := errors.New("link down")
	port.FailWrites(boom)
	e.Send(protocol.Uint8(1), protocol.Uint8(2))
	if !errors.Is(e.Err(), boom) {
		t.Fatalf("expected latched error, got %v", e.Err())
	}
	port.FailWrites(nil)
	if err := e.Flush(); !errors.Is(err, boom) {
		t.Fatalf("flush should surface latched error, got %v", err)
	}
	if e.Err() != nil {
		t.Fatalf("flush should clear latched error")
	}
	e.SendUint8(3)
	if port.Output() != "3 " {
		t.Fatalf("expected writes to resume, got %q", port.Output())
	}
}

func TestDrainLineStopsAtNewline(t *testing.T) {
	e, port, _ := newEngine(t)
	port.Inject("1 2 3\nnext\n")
	if n := e.DrainLine(); n != 6 {
		t.Fatalf("unexpected drained count %d", n)
	}
	tok, ok := e.ReadToken()
	if !ok || tok != "next" {
		t.Fatalf("unexpected next line token %q", tok)
	}
}

func TestSleepPacerIgnoresNonPositive(t *testing.T) {
	start := time.Now()
	SleepPacer{}.Delay(0)
	SleepPacer{}.Delay(-time.Second)
	if time.Since(start) > 100*time.Millisecond {
		t.Fatalf("non-positive delays should not sleep")
	}
}
