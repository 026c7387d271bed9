package lifecycle

import (
	"errors"
	"reflect"

	"github.com/zeusync/lifecycle/internal/core/meta"
)

var errBoom = errors.New("boom")

var (
	tickerType = meta.TypeOf[*ticker]()
	rockType   = meta.TypeOf[*rock]()
)

// ticker counts the lifecycle events it receives.
type ticker struct {
	name       string
	fail       bool
	panics     bool
	lateFail   bool
	latePanics bool
	updates    int
	lates      int
	loads      int
	awakes     [][]any
	trace      *[]string
	onTick     func(*ticker)
}

func (t *ticker) EntityType() reflect.Type { return tickerType }

func (t *ticker) record(event string) {
	if t.trace != nil {
		*t.trace = append(*t.trace, t.name+":"+event)
	}
}

// rock has no handlers anywhere.
type rock struct{ id int }

func (r *rock) EntityType() reflect.Type { return rockType }

// tickerSystem is a stateless handler-bearing type for *ticker.
type tickerSystem struct{}

func (tickerSystem) Update(t *ticker) error {
	t.updates++
	t.record("update")
	if t.onTick != nil {
		t.onTick(t)
	}
	if t.panics {
		panic("ticker exploded")
	}
	if t.fail {
		return errBoom
	}
	return nil
}

func (tickerSystem) LateUpdate(t *ticker) error {
	t.lates++
	t.record("late")
	if t.latePanics {
		panic("late ticker exploded")
	}
	if t.lateFail {
		return errBoom
	}
	return nil
}

func (tickerSystem) Load(t *ticker) error {
	t.loads++
	if t.fail {
		return errBoom
	}
	return nil
}

// helper is unexported, so Reflect does not list it.
func (tickerSystem) helper(t *ticker) {}

// rivalSystem also declares Update for *ticker.
type rivalSystem struct{}

func (rivalSystem) Update(t *ticker) {}

func tickerModule() meta.Module {
	return meta.Table{meta.Reflect(tickerSystem{}, tickerType)}
}

// awakeModule declares every Awake arity for *ticker through the builder.
func awakeModule() meta.Module {
	return meta.Table{
		meta.Handlers("tickerAwake", tickerType,
			meta.Func("Awake", func(t *ticker) { t.awakes = append(t.awakes, []any{}) }),
			meta.Func("Awake", func(t *ticker, a any) { t.awakes = append(t.awakes, []any{a}) }),
			meta.Func("Awake", func(t *ticker, a, b any) { t.awakes = append(t.awakes, []any{a, b}) }),
			meta.Func("Awake", func(t *ticker, a int, b string, c any) {
				t.awakes = append(t.awakes, []any{a, b, c})
			}),
		),
	}
}
