package lifecycle

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/zeusync/lifecycle/internal/core/meta"
)

// buildIndex scans every module and returns a fresh type index. Modules are
// visited by name so a conflict always reports the same pair of handlers.
func buildIndex(modules map[string]meta.Module) (map[reflect.Type]*TypeInfo, error) {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	slices.Sort(names)

	index := make(map[reflect.Type]*TypeInfo)
	for _, name := range names {
		for _, typ := range modules[name].Types() {
			marker, ok := typ.EventMarker()
			if !ok {
				continue
			}
			if marker.Target == nil {
				return nil, fmt.Errorf("module %q: %w: %s", name, ErrInvalidMarker, typ.Name)
			}

			info, ok := index[marker.Target]
			if !ok {
				info = newTypeInfo(marker.Target)
				index[marker.Target] = info
			}

			for _, m := range typ.Methods {
				kind, ok := matchKind(m)
				if !ok {
					continue
				}
				h, err := newHandler(kind, typ.Name, m)
				if err != nil {
					return nil, fmt.Errorf("module %q: %w", name, err)
				}
				if err = info.Add(kind, h); err != nil {
					return nil, fmt.Errorf("module %q: %w", name, err)
				}
			}
		}
	}
	return index, nil
}

// matchKey is the method name, suffixed with the significant parameter count
// when it is positive. The entity parameter of a static method does not count.
func matchKey(m meta.Method) string {
	n := m.Params
	if m.Static {
		n--
	}
	if n > 0 {
		return m.Name + strconv.Itoa(n)
	}
	return m.Name
}

func matchKind(m meta.Method) (EventKind, bool) {
	return ParseKind(matchKey(m))
}
