package codec

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// CallableCodec turns func values into opaque payloads and back. Capturing
// closures byte for byte is not portable, so implementations are expected to
// map functions to stable handles.
type CallableCodec interface {
	EncodeCallable(fn any) ([]byte, error)
	DecodeCallable(payload []byte) (any, error)
}

// ErrUnknownCallable is returned for functions or handles that were never
// registered.
var ErrUnknownCallable = errors.New("unknown callable")

// IsCallable reports whether v is a non-nil func value.
func IsCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// Registry is a CallableCodec backed by a table of named functions. The
// payload of an encoded function is its registered name, so documents written
// by one process decode in another that registers the same names.
//
// Functions are identified by their code pointer: two closures created from
// the same function literal are indistinguishable and cannot both be
// registered.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]any
	byPtr  map[uintptr]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]any{}, byPtr: map[uintptr]string{}}
}

// Register binds name to fn. Re-registering the same function under the same
// name is a no-op.
func (r *Registry) Register(name string, fn any) error {
	if name == "" {
		return errors.New("register callable: empty name")
	}
	if !IsCallable(fn) {
		return fmt.Errorf("register callable %q: %T is not a func", name, fn)
	}
	ptr := reflect.ValueOf(fn).Pointer()
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byPtr[ptr]; ok && prev != name {
		return fmt.Errorf("register callable %q: function already registered as %q", name, prev)
	}
	if _, ok := r.byName[name]; ok && r.byPtr[ptr] != name {
		return fmt.Errorf("register callable %q: name already taken", name)
	}
	r.byName[name] = fn
	r.byPtr[ptr] = name
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, fn any) *Registry {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.byName[name]
	return fn, ok
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

func (r *Registry) EncodeCallable(fn any) ([]byte, error) {
	if !IsCallable(fn) {
		return nil, fmt.Errorf("%w: %T is not a func", ErrEncodingUnsupported, fn)
	}
	ptr := reflect.ValueOf(fn).Pointer()
	r.mu.RLock()
	name, ok := r.byPtr[ptr]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %w: %T", ErrEncodingUnsupported, ErrUnknownCallable, fn)
	}
	return []byte(name), nil
}

func (r *Registry) DecodeCallable(payload []byte) (any, error) {
	fn, ok := r.Lookup(string(payload))
	if !ok {
		return nil, fmt.Errorf("%w: handle %q", ErrUnknownCallable, payload)
	}
	return fn, nil
}
