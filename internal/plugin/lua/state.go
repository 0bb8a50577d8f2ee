package lua

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Default limits for Lua state.
const (
	DefaultTimeout       = 2 * time.Second
	DefaultCallStackSize = 256
)

// State wraps a sandboxed gopher-lua state with an execution budget.
//
// gopher-lua's LState is not goroutine-safe and neither is State; the Host
// serializes access to it.
type State struct {
	L *lua.LState

	timeout       time.Duration
	callStackSize int
	logger        *zap.Logger

	// depth counts nested entries into Lua. Only the outermost one sets the
	// budget.
	depth  int
	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithTimeout sets the time budget of every entry into Lua.
func WithTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// WithCallStackSize bounds the Lua call stack.
func WithCallStackSize(n int) StateOption {
	return func(s *State) {
		s.callStackSize = n
	}
}

// WithStateLogger sets the logger receiving print output.
func WithStateLogger(l *zap.Logger) StateOption {
	return func(s *State) {
		s.logger = l
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		timeout:       DefaultTimeout,
		callStackSize: DefaultCallStackSize,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{
		SkipOpenLibs:  true,
		CallStackSize: s.callStackSize,
	})
	openSafeLibraries(s.L)
	installSandbox(s.L, s.logger)
	return s
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenPackage(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Not opened: io, os, debug, channel, coroutine.
}

// DoString runs src as a chunk named name.
func (s *State) DoString(name, src string) error {
	return s.run(func() error {
		fn, err := s.L.Load(strings.NewReader(src), name)
		if err != nil {
			return err
		}
		s.L.Push(fn)
		return s.L.PCall(0, lua.MultRet, nil)
	})
}

// Call calls fn with args and returns its first result, or LNil.
func (s *State) Call(fn *lua.LFunction, args ...lua.LValue) (lua.LValue, error) {
	ret := lua.LValue(lua.LNil)
	err := s.run(func() error {
		if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
			return err
		}
		ret = s.L.Get(-1)
		s.L.Pop(1)
		return nil
	})
	return ret, err
}

// run executes fn under the time budget and recovers panics raised by the
// Lua VM.
func (s *State) run(fn func() error) (err error) {
	if s.closed {
		return ErrStateClosed
	}
	var ctx context.Context
	if s.depth == 0 && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}
	s.depth++
	top := s.L.GetTop()
	defer func() {
		s.depth--
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
		s.L.SetTop(top)
		if err != nil && ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", ErrBudgetExceeded, err)
		}
	}()
	return fn()
}

// Close releases the Lua state. Later calls fail with ErrStateClosed.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.L.Close()
	s.closed = true
}
