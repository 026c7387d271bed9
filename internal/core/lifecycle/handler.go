package lifecycle

import (
	"fmt"
	"reflect"
	"runtime/debug"

	"github.com/zeusync/lifecycle/internal/core/meta"
	"github.com/zeusync/lifecycle/pkg/generic"
)

var errorType = reflect.TypeFor[error]()

// maxParams is the entity plus the three Awake3 arguments.
const maxParams = 4

var argPool = generic.NewResettingPool(
	func() *[maxParams]reflect.Value { return new([maxParams]reflect.Value) },
	func(buf *[maxParams]reflect.Value) { clear(buf[:]) },
)

// Handler is a callable bound to an (entity type, event kind) pair.
type Handler struct {
	kind      EventKind
	owner     string
	method    string
	fn        reflect.Value
	params    []reflect.Type
	returnErr bool
}

// newHandler checks that m can be called with an entity plus kind.Arity() arguments
// and returns at most an error.
func newHandler(kind EventKind, owner string, m meta.Method) (*Handler, error) {
	if !m.Func.IsValid() || m.Func.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s.%s is not a function", ErrInvalidHandler, owner, m.Name)
	}
	ft := m.Func.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%w: %s.%s is variadic", ErrInvalidHandler, owner, m.Name)
	}
	if want := kind.Arity() + 1; ft.NumIn() != want {
		return nil, fmt.Errorf("%w: %s.%s takes %d parameters, %s needs %d",
			ErrInvalidHandler, owner, m.Name, ft.NumIn(), kind, want)
	}

	h := &Handler{
		kind:   kind,
		owner:  owner,
		method: m.Name,
		fn:     m.Func,
		params: make([]reflect.Type, ft.NumIn()),
	}
	for i := range h.params {
		h.params[i] = ft.In(i)
	}

	switch {
	case ft.NumOut() == 0:
	case ft.NumOut() == 1 && ft.Out(0) == errorType:
		h.returnErr = true
	default:
		return nil, fmt.Errorf("%w: %s.%s must return nothing or error", ErrInvalidHandler, owner, m.Name)
	}
	return h, nil
}

func (h *Handler) Kind() EventKind { return h.kind }

// Owner is the name of the handler-bearing type.
func (h *Handler) Owner() string { return h.owner }

func (h *Handler) Method() string { return h.method }

func (h *Handler) Name() string { return h.owner + "." + h.method }

// Invoke calls the handler with entity and args. Returned errors, argument
// mismatches and panics all come back as the error result.
func (h *Handler) Invoke(entity Entity, args ...any) (err error) {
	if len(args) != len(h.params)-1 {
		return fmt.Errorf("%w: %s wants %d arguments, got %d", ErrArgumentType, h.Name(), len(h.params)-1, len(args))
	}

	buf := argPool.Get()
	defer argPool.Put(buf)
	in := buf[:len(h.params)]
	if in[0], err = argValue(h.params[0], entity); err != nil {
		return fmt.Errorf("%s entity: %w", h.Name(), err)
	}
	for i, a := range args {
		if in[i+1], err = argValue(h.params[i+1], a); err != nil {
			return fmt.Errorf("%s argument %d: %w", h.Name(), i+1, err)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	out := h.fn.Call(in)
	if h.returnErr && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

func argValue(t reflect.Type, a any) (reflect.Value, error) {
	if a == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: nil is not a %s", ErrArgumentType, t)
	}
	v := reflect.ValueOf(a)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%w: %s is not assignable to %s", ErrArgumentType, v.Type(), t)
	}
	return v, nil
}
