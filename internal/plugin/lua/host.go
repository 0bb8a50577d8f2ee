package lua

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/editor"
)

// Host runs scripts against one editor and owns the commands they register.
//
// A Host serializes its own entry points. Script commands dispatched from
// other goroutines while a script runs are not supported.
type Host struct {
	e      *editor.Editor
	state  *State
	logger *zap.Logger

	mu      sync.Mutex
	running atomic.Bool

	// tx is the update a script command runs in, nil outside commands.
	tx *doc.Txn

	// fatal is an invariant failure raised by Go code a script called. It
	// is raised again once control is back outside Lua.
	fatal *doc.InvariantError

	script   string
	commands map[string]doc.Command[string]
	remove   map[string]func()
	closed   bool
}

// Option configures a Host.
type Option func(*hostOptions)

type hostOptions struct {
	timeout   time.Duration
	callStack int
	logger    *zap.Logger
}

// WithBudget sets the time budget of every entry into Lua.
func WithBudget(d time.Duration) Option {
	return func(o *hostOptions) { o.timeout = d }
}

// WithMaxCallStack bounds the Lua call stack.
func WithMaxCallStack(n int) Option {
	return func(o *hostOptions) { o.callStack = n }
}

// WithLogger sets the logger. The editor logger is used otherwise.
func WithLogger(l *zap.Logger) Option {
	return func(o *hostOptions) { o.logger = l }
}

// NewHost creates a host for e.
func NewHost(e *editor.Editor, opts ...Option) *Host {
	o := hostOptions{timeout: DefaultTimeout, callStack: DefaultCallStackSize, logger: e.Logger()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.Named("lua")
	h := &Host{
		e:        e,
		logger:   logger,
		commands: make(map[string]doc.Command[string]),
		remove:   make(map[string]func()),
		state: NewState(
			WithTimeout(o.timeout),
			WithCallStackSize(o.callStack),
			WithStateLogger(logger),
		),
	}
	h.installModule()
	return h
}

// LoadString runs src as the script name.
func (h *Host) LoadString(name, src string) error {
	return h.exec(func() error {
		h.script = name
		if err := h.state.DoString(name, src); err != nil {
			return &ScriptError{Script: name, Err: err}
		}
		h.logger.Debug("script loaded", zap.String("script", name))
		return nil
	})
}

// LoadFile runs the script at path.
func (h *Host) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return &ScriptError{Script: path, Err: err}
	}
	return h.LoadString(path, string(src))
}

// LoadGlobs runs every script matching the patterns, in lexical order per
// pattern. It stops at the first failing script.
func (h *Host) LoadGlobs(patterns []string) error {
	for _, pattern := range patterns {
		paths, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("lua: pattern %q: %w", pattern, err)
		}
		sort.Strings(paths)
		for _, p := range paths {
			if err := h.LoadFile(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Command returns the command a script registered under name.
func (h *Host) Command(name string) (doc.Command[string], bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cmd, ok := h.commands[name]
	return cmd, ok
}

// Commands returns the names of the registered script commands, sorted.
func (h *Host) Commands() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.commands))
	for name := range h.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch dispatches the script command name with payload.
func (h *Host) Dispatch(name, payload string) (bool, error) {
	cmd, ok := h.Command(name)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return editor.Dispatch(h.e, cmd, payload)
}

// Close unregisters the script commands and releases the Lua state.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, remove := range h.remove {
		remove()
	}
	clear(h.remove)
	h.state.Close()
}

// exec runs fn with exclusive access to the Lua state. Calls made while a
// script is running come from that script and run directly.
func (h *Host) exec(fn func() error) error {
	if h.running.Load() {
		return fn()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrStateClosed
	}
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		h.fatal = nil
	}()
	return fn()
}

// register installs fn as the handler of the command name. Registering a
// name again replaces the previous handler.
//
// A handler that fails or reports the command as unhandled leaves the update
// as it found it. An invariant failure in Go code the script called aborts
// the whole update.
func (h *Host) register(name string, fn *lua.LFunction) {
	cmd, ok := h.commands[name]
	if !ok {
		cmd = doc.NewCommand[string](name)
		h.commands[name] = cmd
	}
	if remove, ok := h.remove[name]; ok {
		remove()
	}
	script := h.script
	h.remove[name] = doc.RegisterCommand(h.e.Document(), cmd, func(tx *doc.Txn, payload string) bool {
		var handled bool
		err := h.exec(func() error {
			prev := h.tx
			h.tx = tx
			defer func() { h.tx = prev }()
			sp := tx.Savepoint()
			ret, err := h.state.Call(fn, lua.LString(payload))
			if fatal := h.fatal; fatal != nil {
				h.fatal = nil
				panic(fatal)
			}
			if err != nil {
				sp.Rollback()
				return err
			}
			handled = ret == lua.LNil || lua.LVAsBool(ret)
			if !handled {
				sp.Rollback()
			}
			return nil
		})
		if err != nil {
			h.logger.Warn("script command failed",
				zap.String("command", name), zap.String("script", script), zap.Error(err))
			return false
		}
		return handled
	}, doc.PriorityNormal)
	h.logger.Debug("script command registered", zap.String("command", name), zap.String("script", script))
}
