// Package demo is a small world of players and monsters used by lifecycled.
package demo

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/zeusync/lifecycle/internal/core/lifecycle"
	"github.com/zeusync/lifecycle/internal/core/meta"
	"github.com/zeusync/lifecycle/internal/core/observability/log"
)

var (
	playerType  = meta.TypeOf[*Player]()
	monsterType = meta.TypeOf[*Monster]()
)

// Player handles its own lifecycle events.
type Player struct {
	ID     string
	Name   string
	Frames int
	Loads  int
}

func (p *Player) EntityType() reflect.Type { return playerType }

func (p *Player) Awake(name string) { p.Name = name }

func (p *Player) Update() { p.Frames++ }

func (p *Player) Load() { p.Loads++ }

// Monster's handlers live on MonsterSystem.
type Monster struct {
	ID  int
	HP  int
	Age int
}

func (m *Monster) EntityType() reflect.Type { return monsterType }

// MonsterSystem ages monsters and despawns them once their HP runs out.
type MonsterSystem struct {
	world *World
}

func (s MonsterSystem) Awake(m *Monster, hp int) {
	m.HP = hp
}

func (s MonsterSystem) Update(m *Monster) error {
	if m.HP <= 0 {
		return fmt.Errorf("monster %d updated with no hp", m.ID)
	}
	m.Age++
	m.HP--
	if m.HP == 0 {
		s.world.Despawn(m)
	}
	return nil
}

func (s MonsterSystem) LateUpdate(m *Monster) {
	s.world.lateSeen++
}

type Options struct {
	// SpawnEvery spawns one monster every that many frames. Zero disables spawning.
	SpawnEvery uint64
	MonsterHP  int
}

type World struct {
	events *lifecycle.Manager
	logger log.Log
	opts   Options

	nextID    int
	monsters  map[*Monster]struct{}
	players   []*Player
	spawned   int
	despawned int
	lateSeen  int
}

func NewWorld(events *lifecycle.Manager, logger log.Log, opts Options) *World {
	if logger == nil {
		logger = log.NewNop()
	}
	if opts.MonsterHP <= 0 {
		opts.MonsterHP = 1
	}
	return &World{
		events:   events,
		logger:   logger.Named("world"),
		opts:     opts,
		monsters: make(map[*Monster]struct{}),
	}
}

// Register installs the entity module and the AI module. The AI module's
// handlers target Monster, which the entity module declares.
func (w *World) Register() error {
	entities := meta.Table{
		meta.Reflect(&Player{}, playerType),
		meta.Plain("Monster"),
	}
	if err := w.events.RegisterModule("entities", entities); err != nil {
		return err
	}
	ai := meta.Table{meta.Reflect(MonsterSystem{world: w}, monsterType)}
	return w.events.RegisterModule("ai", ai)
}

func (w *World) AddPlayer(name string) (*Player, error) {
	p := &Player{ID: uuid.NewString()}
	if err := w.events.Awake1(p, name); err != nil {
		return nil, err
	}
	w.events.Add(p)
	w.players = append(w.players, p)
	w.logger.Info("player joined", log.String("id", p.ID), log.String("name", p.Name))
	return p, nil
}

func (w *World) Spawn() (*Monster, error) {
	w.nextID++
	m := &Monster{ID: w.nextID}
	if err := w.events.Awake1(m, w.opts.MonsterHP); err != nil {
		return nil, err
	}
	w.events.Add(m)
	w.monsters[m] = struct{}{}
	w.spawned++
	w.logger.Debug("monster spawned", log.Int("id", m.ID), log.Int("hp", m.HP))
	return m, nil
}

func (w *World) Despawn(m *Monster) {
	if _, ok := w.monsters[m]; !ok {
		return
	}
	delete(w.monsters, m)
	w.events.Remove(m)
	w.despawned++
	w.logger.Debug("monster despawned", log.Int("id", m.ID), log.Int("age", m.Age))
}

// OnFrame is a host.FrameFunc.
func (w *World) OnFrame(frame uint64) {
	if w.opts.SpawnEvery == 0 || frame%w.opts.SpawnEvery != 0 {
		return
	}
	if _, err := w.Spawn(); err != nil {
		w.logger.Error("spawn failed", log.Uint64("frame", frame), log.Error(err))
	}
}

func (w *World) Alive() int { return len(w.monsters) }

func (w *World) Spawned() int { return w.spawned }

func (w *World) Despawned() int { return w.despawned }
