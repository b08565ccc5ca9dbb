package tuner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"

	"github.com/automoto/tileworld/components"
	"github.com/automoto/tileworld/physics"
	"github.com/automoto/tileworld/registry"
	"github.com/automoto/tileworld/shared/gamemath"
)

func setup() (*Tuner, *registry.Registry) {
	pw := physics.NewWorld(physics.Config{Gravity: 10}, gamemath.NewTransformer(16), nil)
	return New(pw, nil), registry.New(donburi.NewWorld(), nil)
}

func playerOptions() physics.BodyOptions {
	opts := physics.DefaultOptions()
	opts.Shape = physics.ShapeCapsule
	opts.Sensor = physics.SensorThinBelow
	opts.Angle = physics.AngleFixed
	opts.Hitbox = physics.Hitbox{Size: math.Vec2{X: 16, Y: 48}}
	return opts
}

func TestCreatePhysicsBody(t *testing.T) {
	tn, reg := setup()
	entry := reg.Create("body")
	baseline := physics.LiveObjects()

	obj, err := tn.CreatePhysicsBody(entry, math.Vec2{X: 32, Y: 64}, 0.5, playerOptions())
	require.NoError(t, err)
	defer obj.Release()

	assert.Equal(t, baseline+1, physics.LiveObjects())
	assert.Equal(t, math.Vec2{X: 2, Y: 4}, obj.Position())
	assert.InDelta(t, 0.5, obj.Angle(), 1e-9)
	assert.Equal(t, entry.Entity(), obj.Tag())

	data := components.Physics.Get(entry)
	assert.Same(t, obj, data.Object)
	assert.Equal(t, playerOptions(), data.Options)
	assert.Len(t, obj.Solids(), 3)
	assert.Len(t, obj.Sensors(), 1)
}

func TestCreateReplacesExistingBody(t *testing.T) {
	tn, reg := setup()
	entry := reg.Create("body", components.Physics)
	baseline := physics.LiveObjects()

	first, err := tn.CreatePhysicsBody(entry, math.Vec2{}, 0, playerOptions())
	require.NoError(t, err)
	second, err := tn.CreatePhysicsBody(entry, math.Vec2{}, 0, playerOptions())
	require.NoError(t, err)
	defer second.Release()

	assert.False(t, first.Alive())
	assert.Equal(t, baseline+1, physics.LiveObjects())
}

func TestCreateWithUnknownShapeFails(t *testing.T) {
	tn, reg := setup()
	entry := reg.Create("body")
	baseline := physics.LiveObjects()

	opts := playerOptions()
	opts.Shape = physics.ShapeKind(9)
	obj, err := tn.CreatePhysicsBody(entry, math.Vec2{}, 0, opts)
	assert.ErrorIs(t, err, physics.ErrUnknownOption)
	assert.Nil(t, obj)
	assert.Equal(t, baseline, physics.LiveObjects())
	assert.Nil(t, components.Physics.Get(entry).Object)
}

func TestApplyUpdatesSnapshot(t *testing.T) {
	tn, reg := setup()
	entry := reg.Create("body")
	obj, err := tn.CreatePhysicsBody(entry, math.Vec2{}, 0, playerOptions())
	require.NoError(t, err)
	defer obj.Release()

	count := obj.ShapeCount()
	for i := 0; i < 2; i++ {
		opts, err := tn.Apply(entry, physics.ShapeCapsule)
		require.NoError(t, err)
		assert.Equal(t, physics.ShapeCapsule, opts.Shape)
		assert.Equal(t, count, obj.ShapeCount())
	}

	opts, err := tn.Apply(entry, physics.MotionManual)
	require.NoError(t, err)
	assert.Equal(t, physics.MotionManual, opts.Motion)
	assert.True(t, obj.IsStatic())

	stored, ok := tn.Options(entry)
	assert.True(t, ok)
	assert.Equal(t, opts, stored)

	_, err = tn.Apply(entry, physics.AnglePolicy(77))
	assert.ErrorIs(t, err, physics.ErrUnknownOption)
	stored, _ = tn.Options(entry)
	assert.Equal(t, opts, stored, "failed apply keeps the snapshot")
}

func TestApplyWithoutBody(t *testing.T) {
	tn, reg := setup()
	entry := reg.Create("body")

	_, err := tn.Apply(entry, physics.ShapeBox)
	assert.ErrorIs(t, err, ErrNoBody)
	_, ok := tn.Options(entry)
	assert.False(t, ok)
}
