package lifecycle

import (
	"fmt"
	"math/bits"
)

// EventKind identifies a lifecycle event. Values are distinct bit flags.
type EventKind uint8

const (
	Awake EventKind = 1 << iota
	Awake1
	Awake2
	Awake3
	Update
	Load
	LateUpdate
)

const kindCount = 7

var kinds = [kindCount]EventKind{Awake, Awake1, Awake2, Awake3, Update, Load, LateUpdate}

var kindNames = [kindCount]string{"Awake", "Awake1", "Awake2", "Awake3", "Update", "Load", "LateUpdate"}

// Kinds returns every event kind in declaration order.
func Kinds() []EventKind {
	out := make([]EventKind, kindCount)
	copy(out, kinds[:])
	return out
}

// ParseKind returns the kind whose symbolic name is exactly s.
func ParseKind(s string) (EventKind, bool) {
	for i, name := range kindNames {
		if name == s {
			return kinds[i], true
		}
	}
	return 0, false
}

func (k EventKind) Valid() bool {
	return k != 0 && k&(k-1) == 0 && bits.TrailingZeros8(uint8(k)) < kindCount
}

func (k EventKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
	return kindNames[k.index()]
}

// Arity is the number of arguments a handler receives besides the entity.
func (k EventKind) Arity() int {
	switch k {
	case Awake1:
		return 1
	case Awake2:
		return 2
	case Awake3:
		return 3
	default:
		return 0
	}
}

func (k EventKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *EventKind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, text)
	}
	*k = parsed
	return nil
}

func (k EventKind) index() int {
	return bits.TrailingZeros8(uint8(k))
}
