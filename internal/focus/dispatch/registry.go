package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/focusctl/internal/focus"
)

var (
	ErrPluginExists = errors.New("dispatch: plugin already registered")
	ErrPluginNil    = errors.New("dispatch: plugin is nil")
	ErrInvalidName  = errors.New("dispatch: invalid plugin name")
)

// Result tells the dispatcher whether a plugin took ownership of a command.
type Result uint8

const (
	// OK means not handled here; keep offering the command.
	OK Result = iota
	// Consumed means the plugin answered the command.
	Consumed
)

// Plugin answers focus commands. OnFocusEvent receives the already-read
// command token and reads its parameters from e.
type Plugin interface {
	Name() string
	OnFocusEvent(e *focus.Engine, input string) Result
}

// Registry keeps plugins in registration order, which is dispatch order.
type Registry struct {
	items []Plugin
}

func NewRegistry() *Registry {
	return &Registry{}
}

// ValidateName rejects names that could not be sent as a single token.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c <= ' ' || c > '~' {
			return fmt.Errorf("%w: %q contains byte %#x", ErrInvalidName, name, c)
		}
	}
	return nil
}

func (r *Registry) Register(p Plugin) error {
	if p == nil {
		return ErrPluginNil
	}
	name := p.Name()
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, ok := r.Resolve(name); ok {
		return fmt.Errorf("%w: %s", ErrPluginExists, name)
	}
	r.items = append(r.items, p)
	return nil
}

// Resolve returns a plugin by name.
func (r *Registry) Resolve(name string) (Plugin, bool) {
	for _, p := range r.items {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Plugins returns the plugins in dispatch order.
func (r *Registry) Plugins() []Plugin {
	out := make([]Plugin, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Registry) Len() int { return len(r.items) }
