package contacts

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/automoto/tileworld/physics"
	"github.com/automoto/tileworld/registry"
	"github.com/automoto/tileworld/shared/gamemath"
	"github.com/automoto/tileworld/tuner"
)

type recorder struct {
	calls map[Kind][]Event
}

func newRecorder(b *Bridge) *recorder {
	r := &recorder{calls: make(map[Kind][]Event)}
	for k := BeginSolid; k < kindCount; k++ {
		kind := k
		b.Subscribe(kind, func(ev Event) { r.calls[kind] = append(r.calls[kind], ev) })
	}
	return r
}

func (r *recorder) total() int {
	n := 0
	for _, evs := range r.calls {
		n += len(evs)
	}
	return n
}

func setup() (*Bridge, *registry.Registry, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	reg := registry.New(donburi.NewWorld(), logger)
	return NewBridge(reg, logger), reg, logs
}

func shapeFor(tag any, sensor bool) *cp.Shape {
	body := cp.NewBody(1, 1)
	body.UserData = tag
	shape := cp.NewBox(body, 1, 1, 0)
	shape.SetSensor(sensor)
	return shape
}

func TestSolidContactGoesToSolidSubscribers(t *testing.T) {
	b, reg, _ := setup()
	rec := newRecorder(b)
	a := reg.Create("a").Entity()
	c := reg.Create("c").Entity()

	contact := physics.Contact{ShapeA: shapeFor(a, false), ShapeB: shapeFor(c, false)}
	b.OnContactBegin(contact)
	b.OnContactEnd(contact)

	require.Len(t, rec.calls[BeginSolid], 1)
	require.Len(t, rec.calls[EndSolid], 1)
	assert.Empty(t, rec.calls[BeginSensor])
	assert.Empty(t, rec.calls[EndSensor])

	ev := rec.calls[BeginSolid][0]
	assert.Equal(t, a, ev.EntityA)
	assert.Equal(t, c, ev.EntityB)
	assert.Same(t, contact.ShapeA, ev.Contact.ShapeA)
}

func TestSensorContactNeverReachesSolidSubscribers(t *testing.T) {
	for _, sensorFirst := range []bool{true, false} {
		b, reg, _ := setup()
		rec := newRecorder(b)
		a := reg.Create("a").Entity()
		c := reg.Create("c").Entity()

		contact := physics.Contact{ShapeA: shapeFor(a, sensorFirst), ShapeB: shapeFor(c, !sensorFirst)}
		b.OnContactBegin(contact)
		b.OnContactEnd(contact)

		assert.Len(t, rec.calls[BeginSensor], 1)
		assert.Len(t, rec.calls[EndSensor], 1)
		assert.Empty(t, rec.calls[BeginSolid])
		assert.Empty(t, rec.calls[EndSolid])
	}
}

func TestSubscribersRunInRegistrationOrder(t *testing.T) {
	b, reg, _ := setup()
	var order []int
	for i := 0; i < 3; i++ {
		n := i
		b.Subscribe(BeginSolid, func(Event) { order = append(order, n) })
	}
	assert.Equal(t, 3, b.Subscribers(BeginSolid))

	a := reg.Create("a").Entity()
	b.OnContactBegin(physics.Contact{ShapeA: shapeFor(a, false), ShapeB: shapeFor(a, false)})
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestUntaggedBodyIsDroppedWithWarning(t *testing.T) {
	b, reg, logs := setup()
	rec := newRecorder(b)
	a := reg.Create("a").Entity()

	b.OnContactBegin(physics.Contact{ShapeA: shapeFor(a, false), ShapeB: shapeFor(nil, false)})

	assert.Zero(t, rec.total())
	warnings := logs.FilterLevelExact(zapcore.WarnLevel)
	require.Equal(t, 1, warnings.Len())
	assert.Equal(t, "contact body has no entity tag", warnings.All()[0].Message)
}

func TestDestroyedEntityIsDroppedQuietly(t *testing.T) {
	b, reg, logs := setup()
	rec := newRecorder(b)
	a := reg.Create("a").Entity()
	gone := reg.Create("gone").Entity()
	reg.Destroy(gone)

	b.OnContactEnd(physics.Contact{ShapeA: shapeFor(a, false), ShapeB: shapeFor(gone, true)})

	assert.Zero(t, rec.total())
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	dropped := logs.FilterMessage("contact with invalid entity dropped")
	require.Equal(t, 1, dropped.Len())
	assert.Equal(t, "REMOVED FROM REGISTRY. Last name was: gone", dropped.All()[0].ContextMap()["name"])
}

func TestSubscribeUnknownKindPanics(t *testing.T) {
	b, _, _ := setup()
	assert.Panics(t, func() { b.Subscribe(Kind(9), func(Event) {}) })
	assert.Zero(t, b.Subscribers(Kind(9)))
}

func TestBridgeInsidePhysicsStep(t *testing.T) {
	b, reg, _ := setup()
	rec := newRecorder(b)
	pw := physics.NewWorld(physics.Config{Gravity: 10, Iterations: 10}, gamemath.NewTransformer(32), nil)
	pw.SetContactListener(b)
	tn := tuner.New(pw, nil)

	ground := reg.Create("ground")
	groundOpts := physics.DefaultOptions()
	groundOpts.Motion = physics.MotionManual
	groundOpts.Hitbox = physics.Hitbox{Size: math.Vec2{X: 256, Y: 32}}
	_, err := tn.CreatePhysicsBody(ground, math.Vec2{X: 0, Y: 96}, 0, groundOpts)
	require.NoError(t, err)

	player := reg.Create("player")
	playerOpts := physics.DefaultOptions()
	playerOpts.Shape = physics.ShapeCapsule
	playerOpts.Sensor = physics.SensorThinBelow
	playerOpts.Angle = physics.AngleFixed
	playerOpts.Hitbox = physics.Hitbox{Size: math.Vec2{X: 16, Y: 32}}
	_, err = tn.CreatePhysicsBody(player, math.Vec2{X: 0, Y: 0}, 0, playerOpts)
	require.NoError(t, err)

	for i := 0; i < 120; i++ {
		pw.Step(1.0 / 60)
	}

	assert.NotEmpty(t, rec.calls[BeginSolid])
	assert.NotEmpty(t, rec.calls[BeginSensor])
	for _, ev := range rec.calls[BeginSensor] {
		pair := []donburi.Entity{ev.EntityA, ev.EntityB}
		assert.ElementsMatch(t, []donburi.Entity{ground.Entity(), player.Entity()}, pair)
	}

	reg.Destroy(player.Entity())
	reg.Destroy(ground.Entity())
}
