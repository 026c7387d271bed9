// Package meta describes loadable code modules to the lifecycle core.
//
// Go has no runtime attribute scanning, so a module is a registration table of
// Type records built once at startup, either explicitly (Handlers, Func,
// Receiver) or from a value's exported method set (Reflect).
package meta

import "reflect"

// Module enumerates the types a code module exposes.
type Module interface {
	Types() []Type
}

// Table is a static registration table.
type Table []Type

func (t Table) Types() []Type { return t }

// ModuleFunc adapts a function to Module.
type ModuleFunc func() []Type

func (f ModuleFunc) Types() []Type { return f() }

// EventMarker is the lifecycle annotation. The methods of a type carrying it
// handle events for Target, which may be the type itself or another type.
type EventMarker struct {
	Target reflect.Type
}

// Type describes one declared type of a module.
type Type struct {
	Name    string
	Markers []any
	Methods []Method
}

// EventMarker returns the first EventMarker annotation of t.
func (t Type) EventMarker() (EventMarker, bool) {
	for _, m := range t.Markers {
		switch mk := m.(type) {
		case EventMarker:
			return mk, true
		case *EventMarker:
			if mk != nil {
				return *mk, true
			}
		}
	}
	return EventMarker{}, false
}

// Method describes a declared method.
//
// Params is the number of declared parameters. For a static method the entity
// is the first of them; for an instance method the entity is the receiver and
// is not counted. Func is called with the entity followed by the remaining
// arguments in both cases.
type Method struct {
	Name   string
	Params int
	Static bool
	Func   reflect.Value
}

// Func declares a static handler. fn must be a function whose first parameter
// accepts the entity.
func Func(name string, fn any) Method {
	v := reflect.ValueOf(fn)
	return Method{Name: name, Params: numIn(v), Static: true, Func: v}
}

// Receiver declares an instance handler from a method expression such as
// (*Player).Update. The receiver parameter is not counted in Params.
func Receiver(name string, fn any) Method {
	v := reflect.ValueOf(fn)
	n := numIn(v)
	if n > 0 {
		n--
	}
	return Method{Name: name, Params: n, Static: false, Func: v}
}

// Handlers builds a marked type whose methods serve target.
func Handlers(name string, target reflect.Type, methods ...Method) Type {
	return Type{
		Name:    name,
		Markers: []any{EventMarker{Target: target}},
		Methods: methods,
	}
}

// Plain builds a type that carries no lifecycle marker.
func Plain(name string, markers ...any) Type {
	return Type{Name: name, Markers: markers}
}

// Reflect builds a marked type from the exported method set of v.
//
// When v's type is target, the methods are instance methods invoked on the
// entity itself. Otherwise they are bound to v and take the entity as their
// first parameter, the way a stateless system type does.
func Reflect(v any, target reflect.Type) Type {
	rv := reflect.ValueOf(v)
	rt := rv.Type()

	methods := make([]Method, 0, rt.NumMethod())
	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		if rt == target {
			methods = append(methods, Receiver(m.Name, m.Func.Interface()))
			continue
		}
		bound := rv.Method(i)
		methods = append(methods, Method{
			Name:   m.Name,
			Params: bound.Type().NumIn(),
			Static: true,
			Func:   bound,
		})
	}
	return Handlers(TypeName(rt), target, methods...)
}

// TypeOf returns the reflect.Type of T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// TypeName renders t without its package path, keeping pointer stars.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Pointer {
		return "*" + TypeName(t.Elem())
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

func numIn(v reflect.Value) int {
	if !v.IsValid() || v.Kind() != reflect.Func {
		return 0
	}
	return v.Type().NumIn()
}
