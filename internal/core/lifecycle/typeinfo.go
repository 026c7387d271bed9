package lifecycle

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zeusync/lifecycle/internal/core/meta"
)

// TypeInfo maps each event kind to the single handler an entity type declares for it.
type TypeInfo struct {
	entity   reflect.Type
	handlers [kindCount]*Handler
}

func newTypeInfo(entity reflect.Type) *TypeInfo {
	return &TypeInfo{entity: entity}
}

func (ti *TypeInfo) EntityType() reflect.Type { return ti.entity }

// Add binds h to kind. A kind is bound at most once.
func (ti *TypeInfo) Add(kind EventKind, h *Handler) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
	}
	if prev := ti.handlers[kind.index()]; prev != nil {
		return fmt.Errorf("%w: %s on %s: %s already bound, %s rejected",
			ErrDuplicateHandler, kind, meta.TypeName(ti.entity), prev.Name(), h.Name())
	}
	ti.handlers[kind.index()] = h
	return nil
}

// Get returns nil when no handler is bound to kind.
func (ti *TypeInfo) Get(kind EventKind) *Handler {
	if !kind.Valid() {
		return nil
	}
	return ti.handlers[kind.index()]
}

// Kinds lists the bound kinds in declaration order.
func (ti *TypeInfo) Kinds() []EventKind {
	out := make([]EventKind, 0, kindCount)
	for i, h := range ti.handlers {
		if h != nil {
			out = append(out, kinds[i])
		}
	}
	return out
}

func (ti *TypeInfo) String() string {
	var sb strings.Builder
	for i, h := range ti.handlers {
		if h == nil {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s %s", kinds[i], h.Name())
	}
	return sb.String()
}
