package lifecycle

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/zeusync/lifecycle/internal/core/meta"
	"github.com/zeusync/lifecycle/internal/core/observability/log"
	"github.com/zeusync/lifecycle/pkg/sequence"
)

// DefaultFaultHistory is how many faults a Manager remembers unless configured otherwise.
const DefaultFaultHistory = 64

// Entity is anything whose lifecycle the Manager drives. Entities are kept in
// identity sets, so implementations must be comparable, normally pointers.
type Entity interface {
	EntityType() reflect.Type
}

// Manager discovers lifecycle handlers in registered modules and dispatches
// lifecycle events to live entities.
//
// A Manager is driven from a single goroutine. Handlers may call Add, Remove
// and the Awake methods while a pass is running. They must not call
// RegisterModule, UnregisterModule, Update or LateUpdate: passes share one
// snapshot buffer.
type Manager struct {
	logger log.Log

	modules map[string]meta.Module
	types   map[reflect.Type]*TypeInfo

	// live holds every entity added and not yet removed, subscribed or not.
	live          *sequence.OrderedSet[Entity]
	members       [kindCount]*sequence.OrderedSet[Entity]
	pendingAdd    *sequence.OrderedSet[Entity]
	pendingRemove *sequence.OrderedSet[Entity]
	scratch       []Entity

	describe    string
	fingerprint uint64

	faults    *faultRing
	observers []func(Fault)

	frames         uint64
	rebuilds       uint64
	dispatched     uint64
	skipped        uint64
	faultCount     uint64
	lastUpdate     time.Duration
	lastLateUpdate time.Duration
}

type Option func(*Manager)

// WithFaultHistory sets how many faults are kept for Faults. Zero disables the history.
func WithFaultHistory(n int) Option {
	return func(m *Manager) {
		m.faults = newFaultRing(n)
	}
}

func New(logger log.Log, opts ...Option) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	m := &Manager{
		logger:        logger.Named("lifecycle"),
		modules:       make(map[string]meta.Module),
		types:         make(map[reflect.Type]*TypeInfo),
		live:          sequence.NewOrderedSet[Entity](16),
		pendingAdd:    sequence.NewOrderedSet[Entity](16),
		pendingRemove: sequence.NewOrderedSet[Entity](16),
		faults:        newFaultRing(DefaultFaultHistory),
	}
	for i := range m.members {
		m.members[i] = sequence.NewOrderedSet[Entity](16)
	}
	for _, opt := range opts {
		opt(m)
	}
	m.refreshDescription()
	return m
}

// RegisterModule stores module under name, replacing any previous module of
// that name, then rebuilds the type index from all modules and runs the Load
// pass. When discovery fails the previous index stays in effect.
func (m *Manager) RegisterModule(name string, module meta.Module) error {
	if module == nil {
		return fmt.Errorf("%w: %q", ErrNilModule, name)
	}
	m.modules[name] = module
	return m.rebuild()
}

// UnregisterModule drops a module and rebuilds the index without it.
func (m *Manager) UnregisterModule(name string) error {
	if _, ok := m.modules[name]; !ok {
		return fmt.Errorf("%w: %q", ErrModuleNotFound, name)
	}
	delete(m.modules, name)
	return m.rebuild()
}

func (m *Manager) Module(name string) (meta.Module, error) {
	module, ok := m.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrModuleNotFound, name)
	}
	return module, nil
}

// Modules returns every registered module ordered by name.
func (m *Manager) Modules() []meta.Module {
	names := m.ModuleNames()
	out := make([]meta.Module, len(names))
	for i, name := range names {
		out[i] = m.modules[name]
	}
	return out
}

func (m *Manager) ModuleNames() []string {
	names := make([]string, 0, len(m.modules))
	for name := range m.modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// TypeInfo returns the handler index of an entity type.
func (m *Manager) TypeInfo(t reflect.Type) (*TypeInfo, bool) {
	info, ok := m.types[t]
	return info, ok
}

// Add queues e for subscription at the start of the next Update.
func (m *Manager) Add(e Entity) {
	if e == nil {
		m.logger.Warn("ignoring nil entity", log.String("op", "add"))
		return
	}
	m.pendingAdd.Add(e)
}

// Remove queues e for unsubscription at the start of the next Update.
// Until then it is also skipped by Update and LateUpdate.
func (m *Manager) Remove(e Entity) {
	if e == nil {
		m.logger.Warn("ignoring nil entity", log.String("op", "remove"))
		return
	}
	m.pendingRemove.Add(e)
}

func (m *Manager) Awake(e Entity) error {
	return m.awaken(Awake, e)
}

func (m *Manager) Awake1(e Entity, p1 any) error {
	return m.awaken(Awake1, e, p1)
}

func (m *Manager) Awake2(e Entity, p1, p2 any) error {
	return m.awaken(Awake2, e, p1, p2)
}

func (m *Manager) Awake3(e Entity, p1, p2, p3 any) error {
	return m.awaken(Awake3, e, p1, p2, p3)
}

// Update applies the pending queues and dispatches Update to every subscriber.
// Handler faults are logged and recorded; they never stop the pass.
func (m *Manager) Update() {
	start := time.Now()
	m.frames++
	m.applyPending()
	m.runPass(Update)
	m.lastUpdate = time.Since(start)
}

// LateUpdate dispatches LateUpdate to every subscriber. It does not touch the queues.
func (m *Manager) LateUpdate() {
	start := time.Now()
	m.runPass(LateUpdate)
	m.lastLateUpdate = time.Since(start)
}

// Members returns the current subscribers of kind in insertion order.
func (m *Manager) Members(kind EventKind) []Entity {
	if !kind.Valid() {
		return nil
	}
	return m.members[kind.index()].AppendTo(nil)
}

func (m *Manager) IsMember(kind EventKind, e Entity) bool {
	if !kind.Valid() {
		return false
	}
	return m.members[kind.index()].Contains(e)
}

// OnFault registers fn to be called for every recorded frame fault.
func (m *Manager) OnFault(fn func(Fault)) {
	if fn != nil {
		m.observers = append(m.observers, fn)
	}
}

// Faults returns the remembered faults, oldest first.
func (m *Manager) Faults() []Fault {
	return m.faults.list()
}

// Describe lists one line per known entity type with its bound handlers.
func (m *Manager) Describe() string {
	return m.describe
}

func (m *Manager) Stats() Stats {
	members := make(map[string]int, kindCount)
	for i, set := range m.members {
		members[kinds[i].String()] = set.Len()
	}
	return Stats{
		Frames:         m.frames,
		Rebuilds:       m.rebuilds,
		Modules:        len(m.modules),
		Types:          len(m.types),
		Live:           m.live.Len(),
		Members:        members,
		PendingAdd:     m.pendingAdd.Len(),
		PendingRemove:  m.pendingRemove.Len(),
		Dispatched:     m.dispatched,
		Skipped:        m.skipped,
		Faults:         m.faultCount,
		LastUpdate:     m.lastUpdate,
		LastLateUpdate: m.lastLateUpdate,
		Fingerprint:    fmt.Sprintf("%016x", m.fingerprint),
	}
}

func (m *Manager) Snapshot() Snapshot {
	return Snapshot{
		Stats:  m.Stats(),
		Faults: m.Faults(),
		Types:  m.describe,
	}
}

func (m *Manager) rebuild() error {
	types, err := buildIndex(m.modules)
	if err != nil {
		m.logger.Error("lifecycle discovery failed", log.Int("modules", len(m.modules)), log.Error(err))
		return err
	}

	m.types = types
	m.rebuilds++
	m.refreshDescription()
	m.resync()

	m.logger.Info("lifecycle index rebuilt",
		log.Int("modules", len(m.modules)),
		log.Int("types", len(m.types)),
		log.String("fingerprint", fmt.Sprintf("%016x", m.fingerprint)),
	)
	return m.load()
}

// resync rebuilds every membership set from the live population against the
// current index. Entities whose type lost all handlers stay live and are
// subscribed again once a handler reappears.
func (m *Manager) resync() {
	for _, set := range m.members {
		set.Clear()
	}
	for e := range m.live.All() {
		m.subscribe(e)
	}
}

// load runs the Load handler of every Load subscriber and stops at the first fault.
func (m *Manager) load() error {
	m.scratch = m.members[Load.index()].AppendTo(m.scratch[:0])
	defer clear(m.scratch)

	for _, e := range m.scratch {
		h := m.handler(e, Load)
		if h == nil {
			continue
		}
		if err := h.Invoke(e); err != nil {
			return fmt.Errorf("%w: %s on %s: %w", ErrLoadFailed, h.Name(), meta.TypeName(e.EntityType()), err)
		}
	}
	return nil
}

func (m *Manager) applyPending() {
	for e := range m.pendingAdd.All() {
		m.live.Add(e)
		m.subscribe(e)
	}
	for e := range m.pendingRemove.All() {
		m.live.Remove(e)
		for _, set := range m.members {
			set.Remove(e)
		}
	}
	m.pendingAdd.Clear()
	m.pendingRemove.Clear()
}

func (m *Manager) subscribe(e Entity) {
	info, ok := m.types[e.EntityType()]
	if !ok {
		return
	}
	for _, kind := range info.Kinds() {
		m.members[kind.index()].Add(e)
	}
}

// runPass dispatches kind over a snapshot of its subscribers. A member whose
// removal is queued, including by a handler earlier in the same pass, is skipped.
func (m *Manager) runPass(kind EventKind) {
	m.scratch = m.members[kind.index()].AppendTo(m.scratch[:0])
	defer clear(m.scratch)

	for _, e := range m.scratch {
		if m.pendingRemove.Contains(e) {
			m.skipped++
			continue
		}
		h := m.handler(e, kind)
		if h == nil {
			continue
		}
		if err := h.Invoke(e); err != nil {
			m.recordFault(kind, e, h, err)
			continue
		}
		m.dispatched++
	}
}

func (m *Manager) awaken(kind EventKind, e Entity, args ...any) error {
	if e == nil {
		return ErrNilEntity
	}
	h := m.handler(e, kind)
	if h == nil {
		return nil
	}
	if err := h.Invoke(e, args...); err != nil {
		return fmt.Errorf("%s %s: %w", kind, h.Name(), err)
	}
	return nil
}

func (m *Manager) handler(e Entity, kind EventKind) *Handler {
	info, ok := m.types[e.EntityType()]
	if !ok {
		return nil
	}
	return info.Get(kind)
}

func (m *Manager) recordFault(kind EventKind, e Entity, h *Handler, err error) {
	f := Fault{
		ID:         uuid.NewString(),
		Frame:      m.frames,
		Kind:       kind,
		EntityType: meta.TypeName(e.EntityType()),
		Handler:    h.Name(),
		Message:    err.Error(),
		Time:       time.Now(),
		Err:        err,
	}
	m.faultCount++
	m.faults.push(f)

	fields := []log.Field{
		log.String("fault_id", f.ID),
		log.Uint64("frame", f.Frame),
		log.Stringer("kind", kind),
		log.String("entity_type", f.EntityType),
		log.String("handler", f.Handler),
		log.Error(err),
	}
	var pe *PanicError
	if errors.As(err, &pe) {
		fields = append(fields, log.ByteString("stack", pe.Stack))
	}
	m.logger.Error("lifecycle handler fault", fields...)

	for _, fn := range m.observers {
		fn(f)
	}
}

func (m *Manager) refreshDescription() {
	lines := make([]string, 0, len(m.types))
	for t, info := range m.types {
		lines = append(lines, meta.TypeName(t)+" "+info.String())
	}
	slices.Sort(lines)

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	m.describe = sb.String()
	m.fingerprint = xxhash.Sum64String(m.describe)
}
