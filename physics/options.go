package physics

import (
	"errors"
	"fmt"

	"github.com/yohamta/donburi/features/math"
)

// ErrUnknownOption is returned when an enum option holds a value the body
// builder does not know how to apply.
var ErrUnknownOption = errors.New("physics: unknown body option")

// ErrReleased is returned when an option is applied to a released object or
// to an object whose world has been recreated.
var ErrReleased = errors.New("physics: object is released")

// AllCategories collides with every category.
const AllCategories = ^uint(0)

// Material is the per-fixture material of the solid shapes.
type Material struct {
	Density     float64
	Friction    float64
	Restitution float64
}

// ShapeKind selects the solid geometry built from the hitbox.
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeCircle
	ShapeCapsule // vertical
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeCircle:
		return "circle"
	case ShapeCapsule:
		return "capsule"
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

// SensorKind selects the sensor geometry attached next to the solid shapes.
type SensorKind int

const (
	SensorNone SensorKind = iota
	SensorThinBelow
)

func (k SensorKind) String() string {
	switch k {
	case SensorNone:
		return "none"
	case SensorThinBelow:
		return "thin-below"
	}
	return fmt.Sprintf("SensorKind(%d)", int(k))
}

// MotionPolicy sets the body type and gravity scale.
type MotionPolicy int

const (
	MotionManual    MotionPolicy = iota // static body, moved only by code
	MotionNoGravity                     // dynamic body, gravity scale 0
	MotionGravity                       // dynamic body, gravity scale 1
	MotionKinematic                     // kinematic body, velocity driven
)

func (m MotionPolicy) String() string {
	switch m {
	case MotionManual:
		return "manual"
	case MotionNoGravity:
		return "no-gravity"
	case MotionGravity:
		return "gravity"
	case MotionKinematic:
		return "kinematic"
	}
	return fmt.Sprintf("MotionPolicy(%d)", int(m))
}

// AnglePolicy controls body rotation.
type AnglePolicy int

const (
	AngleFixed AnglePolicy = iota
	AngleFree
	// AngleFollowVelocity leaves the body free and lets a per-frame system
	// orient it along its velocity.
	AngleFollowVelocity
)

func (a AnglePolicy) String() string {
	switch a {
	case AngleFixed:
		return "fixed"
	case AngleFree:
		return "free"
	case AngleFollowVelocity:
		return "follow-velocity"
	}
	return fmt.Sprintf("AnglePolicy(%d)", int(a))
}

// CollisionFilter holds the body's own category bits and the categories it
// collides with. A zero CollideWith mask makes the body collide with nothing.
type CollisionFilter struct {
	Category    uint
	CollideWith uint
}

// BulletPolicy marks fast bodies that need finer stepping.
type BulletPolicy int

const (
	NotBullet BulletPolicy = iota
	Bullet
)

// Hitbox is the body size in world units.
type Hitbox struct {
	Size math.Vec2
}

// BodyOptions fully describe the fixtures and flags of one body.
type BodyOptions struct {
	Material Material
	Shape    ShapeKind
	Sensor   SensorKind
	Motion   MotionPolicy
	Angle    AnglePolicy
	Filter   CollisionFilter
	Bullet   BulletPolicy
	Hitbox   Hitbox
}

// DefaultOptions returns a one-by-one world pixel dynamic box with unit
// density that collides with everything.
func DefaultOptions() BodyOptions {
	return BodyOptions{
		Material: Material{Density: 1, Friction: 0.7},
		Shape:    ShapeBox,
		Sensor:   SensorNone,
		Motion:   MotionGravity,
		Angle:    AngleFree,
		Filter:   CollisionFilter{Category: 1, CollideWith: AllCategories},
		Bullet:   NotBullet,
		Hitbox:   Hitbox{Size: math.Vec2{X: 1, Y: 1}},
	}
}

// Option is one facet of BodyOptions. Every facet type in this package
// implements it.
type Option interface {
	with(opts BodyOptions) BodyOptions
	apply(o *Object, prev, next BodyOptions) error
}

func (m Material) with(opts BodyOptions) BodyOptions {
	opts.Material = m
	return opts
}

func (m Material) apply(o *Object, _, next BodyOptions) error {
	o.applyMaterial(next.Material)
	return nil
}

func (k ShapeKind) with(opts BodyOptions) BodyOptions {
	opts.Shape = k
	return opts
}

func (k ShapeKind) apply(o *Object, _, next BodyOptions) error {
	return o.rebuildSolids(next)
}

func (k SensorKind) with(opts BodyOptions) BodyOptions {
	opts.Sensor = k
	return opts
}

func (k SensorKind) apply(o *Object, _, next BodyOptions) error {
	return o.rebuildSensors(next)
}

func (m MotionPolicy) with(opts BodyOptions) BodyOptions {
	opts.Motion = m
	return opts
}

func (m MotionPolicy) apply(o *Object, _, next BodyOptions) error {
	return o.setMotion(next.Motion)
}

func (a AnglePolicy) with(opts BodyOptions) BodyOptions {
	opts.Angle = a
	return opts
}

func (a AnglePolicy) apply(o *Object, _, next BodyOptions) error {
	switch next.Angle {
	case AngleFixed, AngleFree, AngleFollowVelocity:
		return nil // settled in ApplyOption
	}
	return fmt.Errorf("%w: angle policy %s", ErrUnknownOption, next.Angle)
}

func (f CollisionFilter) with(opts BodyOptions) BodyOptions {
	opts.Filter = f
	return opts
}

func (f CollisionFilter) apply(o *Object, _, next BodyOptions) error {
	o.setFilter(next.Filter)
	return nil
}

func (b BulletPolicy) with(opts BodyOptions) BodyOptions {
	opts.Bullet = b
	return opts
}

func (b BulletPolicy) apply(o *Object, _, next BodyOptions) error {
	o.setBullet(next.Bullet == Bullet)
	return nil
}

func (h Hitbox) with(opts BodyOptions) BodyOptions {
	opts.Hitbox = h
	return opts
}

func (h Hitbox) apply(o *Object, prev, next BodyOptions) error {
	if prev.Hitbox == next.Hitbox {
		return nil
	}
	return o.rebuildSolids(next)
}

// ApplyOption applies one facet to o and returns the updated options. On
// error o and the returned options are left as they were.
func ApplyOption(o *Object, current BodyOptions, opt Option) (BodyOptions, error) {
	if !o.Alive() {
		return current, ErrReleased
	}
	next := opt.with(current)
	if err := opt.apply(o, current, next); err != nil {
		return current, err
	}
	o.settle(next)
	return next, nil
}

// Configure applies every facet of opts to a freshly created object in the
// order material, shape, sensor, motion, angle, filter, bullet, hitbox.
func Configure(o *Object, opts BodyOptions) error {
	facets := []Option{
		opts.Material,
		opts.Shape,
		opts.Sensor,
		opts.Motion,
		opts.Angle,
		opts.Filter,
		opts.Bullet,
		opts.Hitbox,
	}
	for _, facet := range facets {
		if _, err := ApplyOption(o, opts, facet); err != nil {
			return err
		}
	}
	return nil
}
