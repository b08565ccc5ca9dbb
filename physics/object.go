package physics

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/jakecoffman/cp"
	dmath "github.com/yohamta/donburi/features/math"
)

// The thin sensor is narrower than the body so it never touches side walls.
const (
	thinSensorWidth      = 0.75
	thinSensorHalfHeight = 0.015 // physics units
)

var liveObjects atomic.Int64

// LiveObjects returns the number of objects created and not yet destroyed,
// across every world.
func LiveObjects() int64 {
	return liveObjects.Load()
}

// Object owns one rigid body and its shapes. It is reference counted: the
// body leaves its space when the last reference is released.
type Object struct {
	world *World
	space *cp.Space
	body  *cp.Body

	solids  []*cp.Shape
	sensors []*cp.Shape

	material     Material
	filter       cp.ShapeFilter
	gravityScale float64
	bullet       bool

	refs     int32
	released bool
}

func newObject(w *World, pos cp.Vector, angle float64, tag any) *Object {
	o := &Object{
		world:        w,
		space:        w.space,
		filter:       cp.NewShapeFilter(0, 1, AllCategories),
		gravityScale: 1,
		refs:         1,
	}

	body := cp.NewBody(0, 0)
	body.SetPosition(pos)
	body.SetAngle(angle)
	body.UserData = tag
	body.SetVelocityUpdateFunc(o.updateVelocity)
	o.body = body
	w.space.AddBody(body)

	liveObjects.Add(1)
	return o
}

func (o *Object) updateVelocity(body *cp.Body, gravity cp.Vector, damping, dt float64) {
	cp.BodyUpdateVelocity(body, gravity.Mult(o.gravityScale), damping, dt)
}

// Retain adds a reference.
func (o *Object) Retain() *Object {
	if !o.released {
		o.refs++
	}
	return o
}

// Release drops a reference. The last release removes the shapes and the body
// from the space; further calls do nothing.
func (o *Object) Release() {
	if o.released {
		return
	}
	o.refs--
	if o.refs > 0 {
		return
	}
	o.destroy()
}

func (o *Object) destroy() {
	o.released = true
	if o.current() {
		o.removeShapes(o.solids)
		o.removeShapes(o.sensors)
		o.space.RemoveBody(o.body)
	}
	o.solids, o.sensors = nil, nil
	if o.bullet && o.current() {
		o.world.bullets--
	}
	o.bullet = false
	o.body.UserData = nil
	liveObjects.Add(-1)
}

// current reports whether the object's space is still the world's space.
func (o *Object) current() bool {
	return o.world.space == o.space
}

// Alive reports whether the object can still be configured and simulated.
func (o *Object) Alive() bool {
	return !o.released && o.current()
}

// Refs returns the current reference count.
func (o *Object) Refs() int32 { return o.refs }

// Body returns the underlying cp body.
func (o *Object) Body() *cp.Body { return o.body }

// Tag returns the value stored on the body at creation.
func (o *Object) Tag() any { return o.body.UserData }

// Solids returns the solid shapes.
func (o *Object) Solids() []*cp.Shape { return o.solids }

// Sensors returns the sensor shapes.
func (o *Object) Sensors() []*cp.Shape { return o.sensors }

// ShapeCount returns the number of solid and sensor shapes.
func (o *Object) ShapeCount() int { return len(o.solids) + len(o.sensors) }

// GravityScale returns the multiplier applied to world gravity.
func (o *Object) GravityScale() float64 { return o.gravityScale }

// IsBullet reports whether the object requests substepping.
func (o *Object) IsBullet() bool { return o.bullet }

// Filter returns the filter applied to every shape.
func (o *Object) Filter() cp.ShapeFilter { return o.filter }

// Position returns the body position in physics space.
func (o *Object) Position() dmath.Vec2 {
	p := o.body.Position()
	return dmath.Vec2{X: p.X, Y: p.Y}
}

// SetPosition moves the body in physics space.
func (o *Object) SetPosition(p dmath.Vec2) {
	o.body.SetPosition(cp.Vector{X: p.X, Y: p.Y})
}

// Velocity returns the body velocity in physics units per second.
func (o *Object) Velocity() dmath.Vec2 {
	v := o.body.Velocity()
	return dmath.Vec2{X: v.X, Y: v.Y}
}

// SetVelocity sets the body velocity in physics units per second.
func (o *Object) SetVelocity(v dmath.Vec2) {
	o.body.SetVelocityVector(cp.Vector{X: v.X, Y: v.Y})
}

// Angle returns the body angle in radians.
func (o *Object) Angle() float64 { return o.body.Angle() }

// SetAngle sets the body angle in radians.
func (o *Object) SetAngle(a float64) { o.body.SetAngle(a) }

// IsStatic reports whether the body is static.
func (o *Object) IsStatic() bool { return o.body.GetType() == cp.BODY_STATIC }

// IsDynamic reports whether the body is dynamic.
func (o *Object) IsDynamic() bool { return o.body.GetType() == cp.BODY_DYNAMIC }

func (o *Object) removeShapes(shapes []*cp.Shape) {
	if !o.current() {
		return
	}
	for _, s := range shapes {
		o.space.RemoveShape(s)
	}
}

func (o *Object) addShape(s *cp.Shape, sensor bool) {
	s.SetCollisionType(EntityCollisionType)
	s.SetFilter(o.filter)
	s.SetSensor(sensor)
	o.space.AddShape(s)
	if sensor {
		o.sensors = append(o.sensors, s)
		return
	}
	o.setShapeMaterial(s, o.material)
	o.solids = append(o.solids, s)
}

func (o *Object) setShapeMaterial(s *cp.Shape, m Material) {
	s.SetFriction(m.Friction)
	s.SetElasticity(m.Restitution)
	if m.Density > 0 {
		s.SetDensity(m.Density)
	}
}

func (o *Object) applyMaterial(m Material) {
	o.material = m
	for _, s := range o.solids {
		o.setShapeMaterial(s, m)
	}
}

func (o *Object) rebuildSolids(opts BodyOptions) error {
	tf := o.world.transformer
	w := tf.LengthToPhysics(opts.Hitbox.Size.X)
	h := tf.LengthToPhysics(opts.Hitbox.Size.Y)

	var shapes []*cp.Shape
	switch opts.Shape {
	case ShapeBox:
		shapes = append(shapes, cp.NewBox(o.body, w, h, 0))
	case ShapeCircle:
		shapes = append(shapes, cp.NewCircle(o.body, w/2, cp.Vector{}))
	case ShapeCapsule:
		radius := w / 2
		boxHeight := h - 2*radius
		if boxHeight > 0 {
			shapes = append(shapes, cp.NewBox(o.body, 2*radius, boxHeight, 0))
		}
		shapes = append(shapes,
			cp.NewCircle(o.body, radius, cp.Vector{Y: -boxHeight / 2}),
			cp.NewCircle(o.body, radius, cp.Vector{Y: boxHeight / 2}),
		)
	default:
		return fmt.Errorf("%w: shape %s", ErrUnknownOption, opts.Shape)
	}

	o.material = opts.Material
	o.removeShapes(o.solids)
	o.solids = nil
	for _, s := range shapes {
		o.addShape(s, false)
	}
	return nil
}

func (o *Object) rebuildSensors(opts BodyOptions) error {
	var shapes []*cp.Shape
	switch opts.Sensor {
	case SensorNone:
	case SensorThinBelow:
		tf := o.world.transformer
		w := tf.LengthToPhysics(opts.Hitbox.Size.X)
		h := tf.LengthToPhysics(opts.Hitbox.Size.Y)
		hw := w / 2 * thinSensorWidth
		cy := h/2 + thinSensorHalfHeight
		shapes = append(shapes, cp.NewBox2(o.body, cp.BB{
			L: -hw,
			B: cy - thinSensorHalfHeight,
			R: hw,
			T: cy + thinSensorHalfHeight,
		}, 0))
	default:
		return fmt.Errorf("%w: sensor %s", ErrUnknownOption, opts.Sensor)
	}

	o.removeShapes(o.sensors)
	o.sensors = nil
	for _, s := range shapes {
		o.addShape(s, true)
	}
	return nil
}

func (o *Object) setMotion(m MotionPolicy) error {
	switch m {
	case MotionManual:
		o.body.SetType(cp.BODY_STATIC)
	case MotionNoGravity:
		o.gravityScale = 0
		o.body.SetType(cp.BODY_DYNAMIC)
	case MotionGravity:
		o.gravityScale = 1
		o.body.SetType(cp.BODY_DYNAMIC)
	case MotionKinematic:
		o.body.SetType(cp.BODY_KINEMATIC)
	default:
		return fmt.Errorf("%w: motion policy %s", ErrUnknownOption, m)
	}
	return nil
}

func (o *Object) setFilter(f CollisionFilter) {
	o.filter = cp.NewShapeFilter(0, f.Category, f.CollideWith)
	for _, s := range o.solids {
		s.SetFilter(o.filter)
	}
	for _, s := range o.sensors {
		s.SetFilter(o.filter)
	}
}

func (o *Object) setBullet(on bool) {
	if on == o.bullet {
		return
	}
	o.bullet = on
	if on {
		o.world.bullets++
	} else {
		o.world.bullets--
	}
}

// settle keeps a dynamic body simulatable after a change: positive mass, and
// a moment matching the angle policy.
func (o *Object) settle(opts BodyOptions) {
	if o.body.GetType() != cp.BODY_DYNAMIC {
		return
	}
	if opts.Angle == AngleFixed {
		if o.body.Mass() <= 0 {
			o.body.SetMass(1)
		}
		o.body.SetMoment(math.Inf(1))
		return
	}
	if math.IsInf(o.body.Moment(), 1) {
		// Setting density again makes cp recompute mass and moment.
		o.applyMaterial(o.material)
	}
	if o.body.Mass() <= 0 {
		o.body.SetMass(1)
	}
	if o.body.Moment() <= 0 || math.IsInf(o.body.Moment(), 1) {
		o.body.SetMoment(1)
	}
}
