// Package physics wraps the cp rigid-body space used by tileworld: one
// recreatable World, reference-counted Objects that own a body each, the
// declarative BodyOptions that shape those bodies, and the contact callback
// boundary.
package physics

import (
	"github.com/jakecoffman/cp"
	dmath "github.com/yohamta/donburi/features/math"
	"go.uber.org/zap"

	"github.com/automoto/tileworld/logging"
	"github.com/automoto/tileworld/shared/gamemath"
)

// EntityCollisionType is set on every shape created through an Object, so
// one collision handler sees every contact.
const EntityCollisionType cp.CollisionType = 1

// Config holds the world parameters.
type Config struct {
	Gravity        float64 // physics units per second squared, +Y is down
	Iterations     int
	BulletSubsteps int
}

// Contact is the engine view of two touching shapes. Arbiter is nil when the
// contact did not come from a space step.
type Contact struct {
	ShapeA, ShapeB *cp.Shape
	Arbiter        *cp.Arbiter
}

// ContactListener receives begin and end callbacks from the space step.
// Callbacks run inside the step and must not add or remove bodies or shapes.
type ContactListener interface {
	OnContactBegin(c Contact)
	OnContactEnd(c Contact)
}

// World owns the cp space. The space is replaced wholesale by Recreate;
// objects from a previous space stop being Alive at that moment.
type World struct {
	space       *cp.Space
	cfg         Config
	transformer gamemath.Transformer
	listener    ContactListener
	bullets     int
	generation  int
	log         *zap.Logger
}

// NewWorld returns a world with a fresh space.
func NewWorld(cfg Config, tf gamemath.Transformer, logger *zap.Logger) *World {
	w := &World{
		cfg:         cfg,
		transformer: tf,
		log:         logging.OrNop(logger),
	}
	w.Recreate()
	return w
}

// Recreate discards the current space and builds a new one with the
// configured gravity. The contact listener, if any, is registered again.
func (w *World) Recreate() {
	space := cp.NewSpace()
	if w.cfg.Iterations > 0 {
		space.Iterations = uint(w.cfg.Iterations)
	}
	space.SetGravity(cp.Vector{X: 0, Y: w.cfg.Gravity})

	w.space = space
	w.bullets = 0
	w.generation++
	w.registerHandler()

	w.log.Debug("physics world created",
		zap.Int("generation", w.generation),
		zap.Float64("gravity", w.cfg.Gravity))
}

// SetContactListener registers l for begin and end contacts. A nil listener
// disables contact callbacks.
func (w *World) SetContactListener(l ContactListener) {
	w.listener = l
	w.registerHandler()
}

func (w *World) registerHandler() {
	handler := w.space.NewCollisionHandler(EntityCollisionType, EntityCollisionType)
	handler.UserData = w
	handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world := userData.(*World)
		if world.listener != nil {
			a, b := arb.Shapes()
			world.listener.OnContactBegin(Contact{ShapeA: a, ShapeB: b, Arbiter: arb})
		}
		return true
	}
	handler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		world := userData.(*World)
		if world.listener != nil {
			a, b := arb.Shapes()
			world.listener.OnContactEnd(Contact{ShapeA: a, ShapeB: b, Arbiter: arb})
		}
	}
}

// Step advances the space by dt seconds. While a bullet object is alive the
// step is split into BulletSubsteps smaller steps.
func (w *World) Step(dt float64) {
	steps := 1
	if w.bullets > 0 && w.cfg.BulletSubsteps > 1 {
		steps = w.cfg.BulletSubsteps
	}
	sub := dt / float64(steps)
	for i := 0; i < steps; i++ {
		w.space.Step(sub)
	}
}

// NewObject creates a shapeless dynamic body at pos (physics space) tagged
// with tag. Use Configure or ApplyOption to give it shapes.
func (w *World) NewObject(pos dmath.Vec2, angle float64, tag any) *Object {
	return newObject(w, cp.Vector{X: pos.X, Y: pos.Y}, angle, tag)
}

// Space returns the current cp space.
func (w *World) Space() *cp.Space { return w.space }

// Transformer returns the world/physics conversion in use.
func (w *World) Transformer() gamemath.Transformer { return w.transformer }

// Generation counts Recreate calls, starting at 1.
func (w *World) Generation() int { return w.generation }

// Bullets returns the number of live bullet objects in the current space.
func (w *World) Bullets() int { return w.bullets }

// Gravity returns the configured gravity.
func (w *World) Gravity() float64 { return w.cfg.Gravity }
