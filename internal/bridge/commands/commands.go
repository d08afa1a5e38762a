// Package commands holds the named operations the front end may invoke
// through the bridge.
package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
)

var (
	ErrUnknown   = errors.New("unknown command")
	ErrDuplicate = errors.New("command already registered")
	ErrEmptyName = errors.New("command name is empty")
	ErrBadName   = errors.New("invalid command name")
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// ValidateName accepts lower snake_case names of at most 64 characters.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}

// Func runs a command. A returned error is delivered to the front end as a
// string; it is not a transport failure.
type Func func(ctx context.Context) (any, error)

// Registry maps command names to their handlers. Registration is expected to
// finish before the bridge starts serving; lookups are safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Func)}
}

func (r *Registry) Register(name string, fn Func) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("register %q: nil func", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cmds[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	r.cmds[name] = fn
	return nil
}

// MustRegister panics on registration errors. Use it for commands wired at
// startup where a failure is a programming error.
func (r *Registry) MustRegister(name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

func (r *Registry) Invoke(ctx context.Context, name string) (any, error) {
	r.mu.RLock()
	fn, ok := r.cmds[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return fn(ctx)
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
