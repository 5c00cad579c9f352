package keymap

import (
	"errors"
	"strings"
	"testing"

	"github.com/danmuck/focusctl/internal/focus"
	"github.com/danmuck/focusctl/internal/focus/dispatch"
	"github.com/danmuck/focusctl/internal/protocol"
	"github.com/danmuck/focusctl/internal/testutil/testlog"
	"github.com/danmuck/focusctl/internal/transport/loopback"
)

func newHarness(t *testing.T, defaults []protocol.Key) (*Plugin, *dispatch.Dispatcher, *loopback.Port) {
	t.Helper()
	testlog.Start(t)
	port, err := loopback.New(128)
	if err != nil {
		t.Fatalf("loopback: %v", err)
	}
	cfg := focus.DefaultConfig()
	cfg.Pacer = port
	e, err := focus.New(port, cfg)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	d, err := dispatch.New(e, dispatch.Config{})
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	p, err := New(2, 2, defaults)
	if err != nil {
		t.Fatalf("keymap: %v", err)
	}
	if err := d.Register(p); err != nil {
		t.Fatalf("register: %v", err)
	}
	return p, d, port
}

func send(t *testing.T, d *dispatch.Dispatcher, port *loopback.Port, line string) string {
	t.Helper()
	port.Reset()
	port.Inject(line + "\n")
	if _, err := d.Cycle(); err != nil {
		t.Fatalf("cycle %q: %v", line, err)
	}
	return port.Lines(true)[0]
}

func TestDefaultDump(t *testing.T) {
	_, d, port := newHarness(t, []protocol.Key{4, 5, 6})
	if got := send(t, d, port, CmdDefault); got != "4 5 6 0 " {
		t.Fatalf("unexpected default dump %q", got)
	}
}

func TestCustomStartsAsDefaultsAndUpdates(t *testing.T) {
	p, d, port := newHarness(t, []protocol.Key{4, 5, 6, 7})
	if got := send(t, d, port, CmdCustom); got != "4 5 6 7 " {
		t.Fatalf("unexpected initial custom dump %q", got)
	}

	send(t, d, port, "keymap.custom 10 11")
	if got := send(t, d, port, CmdCustom); got != "10 11 6 7 " {
		t.Fatalf("partial update should keep the tail, got %q", got)
	}
	if k, _ := p.Lookup(0, 1); k != 11 {
		t.Fatalf("unexpected lookup %d", k)
	}
	if got := send(t, d, port, CmdDefault); got != "4 5 6 7 " {
		t.Fatalf("defaults must not change, got %q", got)
	}
}

func TestKeysTruncateToSixteenBits(t *testing.T) {
	p, d, port := newHarness(t, nil)
	send(t, d, port, "keymap.custom 70000")
	if k, _ := p.Lookup(0, 0); k != 4464 {
		t.Fatalf("expected truncated key 4464, got %d", k)
	}
}

func TestOnlyCustom(t *testing.T) {
	p, d, port := newHarness(t, []protocol.Key{4, 5, 6, 7})
	send(t, d, port, "keymap.custom 0")

	if k, _ := p.Lookup(0, 0); k != 4 {
		t.Fatalf("empty custom slot should fall back to default, got %d", k)
	}
	if got := send(t, d, port, CmdOnlyCustom); got != "false " {
		t.Fatalf("unexpected onlyCustom %q", got)
	}
	send(t, d, port, "keymap.onlyCustom 1")
	if !p.OnlyCustom() {
		t.Fatalf("onlyCustom should be set")
	}
	if k, _ := p.Lookup(0, 0); k != 0 {
		t.Fatalf("custom-only lookup should not fall back, got %d", k)
	}
	send(t, d, port, "keymap.onlyCustom maybe")
	if !p.OnlyCustom() {
		t.Fatalf("invalid bool should be ignored")
	}
}

func TestLookupBounds(t *testing.T) {
	p, _, _ := newHarness(t, nil)
	if _, ok := p.Lookup(2, 0); ok {
		t.Fatalf("layer out of range")
	}
	if _, ok := p.Lookup(0, -1); ok {
		t.Fatalf("index out of range")
	}
	if p.Size() != 4 {
		t.Fatalf("unexpected size %d", p.Size())
	}
}

func TestHelpListsCommands(t *testing.T) {
	_, d, port := newHarness(t, nil)
	port.Inject("help\n")
	if _, err := d.Cycle(); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	out := port.Output()
	for _, cmd := range []string{CmdCustom, CmdDefault, CmdOnlyCustom} {
		if !strings.Contains(out, cmd+protocol.LineEnd) {
			t.Fatalf("help missing %s: %q", cmd, out)
		}
	}
}

func TestNewRejectsBadShape(t *testing.T) {
	if _, err := New(0, 4, nil); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("expected ErrInvalidShape, got %v", err)
	}
	if _, err := New(1, 1, []protocol.Key{1, 2}); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("expected ErrInvalidShape for too many defaults, got %v", err)
	}
}
