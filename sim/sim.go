// Package sim runs the headless collision harness: an ECS world of convex
// shapes that move each tick while every pair is queried with the swept solver.
package sim

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sweep/collision"
	"github.com/pthm-cable/sweep/components"
	"github.com/pthm-cable/sweep/config"
	"github.com/pthm-cable/sweep/shape"
	"github.com/pthm-cable/sweep/systems"
	"github.com/pthm-cable/sweep/telemetry"
)

// Options configures a Sim beyond the loaded config.
type Options struct {
	OutputDir     string                      // CSV and config snapshot directory ("" = disabled)
	LogStats      bool                        // log window and perf stats via slog
	LogContacts   bool                        // log every contact via slog
	StatsCallback func(telemetry.WindowStats) // called on every window flush
}

// Sim holds the complete harness state.
type Sim struct {
	cfg   *config.Config
	world *ecs.World

	entityMapper *ecs.Map4[
		components.Transform,
		components.Velocity,
		components.Spin,
		components.Collider,
	]
	transformMap *ecs.Map1[components.Transform]

	// Systems
	geometry  *systems.GeometrySystem
	collision *systems.CollisionSystem
	motion    *systems.MotionSystem

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
	logStats      bool
	logContacts   bool

	// State
	entities map[string]ecs.Entity
	contacts []telemetry.ContactEvent
	tick     int32
}

// New creates a harness populated from cfg.Scenario.
func New(cfg *config.Config, opts Options) (*Sim, error) {
	world := ecs.NewWorld()

	s := &Sim{
		cfg:   cfg,
		world: world,
		entityMapper: ecs.NewMap4[
			components.Transform,
			components.Velocity,
			components.Spin,
			components.Collider,
		](world),
		transformMap: ecs.NewMap1[components.Transform](world),

		geometry:  systems.NewGeometrySystem(world),
		collision: systems.NewCollisionSystem(world, collision.Solver{Flip: cfg.Derived.Flip}),
		motion:    systems.NewMotionSystem(world),

		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		statsCallback: opts.StatsCallback,
		logStats:      opts.LogStats,
		logContacts:   opts.LogContacts,

		entities: make(map[string]ecs.Entity, len(cfg.Scenario.Shapes)),
	}

	if err := s.spawnScenario(); err != nil {
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}
	s.outputManager = om

	return s, nil
}

// spawnScenario creates one entity per configured shape.
func (s *Sim) spawnScenario() error {
	for i, sc := range s.cfg.Scenario.Shapes {
		if _, dup := s.entities[sc.Name]; dup {
			return fmt.Errorf("scenario shape %q: duplicate name", sc.Name)
		}

		verts, err := sc.LocalVertices()
		if err != nil {
			return err
		}
		sh, err := shape.New(verts)
		if err != nil {
			return fmt.Errorf("scenario shape %q: %w", sc.Name, err)
		}

		tf := components.Transform{
			Position: sc.Position.Vec(),
			Rotation: sc.Rotation,
			Scale:    sc.ScaleVec(),
		}
		vel := components.Velocity{Vec: sc.Velocity.Vec()}
		spin := components.Spin{Rate: sc.Spin}
		col := components.Collider{Name: sc.Name, Index: i, Shape: sh}

		s.entities[sc.Name] = s.entityMapper.NewEntity(&tf, &vel, &spin, &col)
	}
	return nil
}

// Step advances the harness by one tick: geometry refresh, pair queries,
// telemetry, then motion.
func (s *Sim) Step() {
	s.perfCollector.StartTick()

	s.perfCollector.StartPhase(telemetry.PhaseGeometry)
	s.geometry.Update()

	s.perfCollector.StartPhase(telemetry.PhaseCollision)
	s.contacts = s.collision.Update(s.tick)

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.recordContacts()

	s.perfCollector.StartPhase(telemetry.PhaseMotion)
	s.motion.Update()

	s.perfCollector.EndTick()

	s.tick++
	s.flushTelemetry()
}

// Tick returns the number of completed steps.
func (s *Sim) Tick() int32 {
	return s.tick
}

// Contacts returns the contacts found by the last Step. The slice is reused
// by the next Step.
func (s *Sim) Contacts() []telemetry.ContactEvent {
	return s.contacts
}

// Transform returns the current pose of the named shape.
func (s *Sim) Transform(name string) (components.Transform, bool) {
	e, ok := s.entities[name]
	if !ok || !s.world.Alive(e) {
		return components.Transform{}, false
	}
	return *s.transformMap.Get(e), true
}

// ShapeCount returns the number of shapes in the world.
func (s *Sim) ShapeCount() int {
	return len(s.entities)
}

// Close flushes any partial stats window and closes output files.
func (s *Sim) Close() error {
	if s.tick > s.collector.WindowStart() {
		s.flush()
	}
	if err := s.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
		return err
	}
	return nil
}
