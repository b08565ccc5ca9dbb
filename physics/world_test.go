package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dmath "github.com/yohamta/donburi/features/math"
)

type recordingListener struct {
	begins, ends []Contact
}

func (l *recordingListener) OnContactBegin(c Contact) { l.begins = append(l.begins, c) }
func (l *recordingListener) OnContactEnd(c Contact)   { l.ends = append(l.ends, c) }

func spawnBox(t *testing.T, w *World, pos dmath.Vec2, size float64, motion MotionPolicy) *Object {
	t.Helper()
	opts := boxOptions(size, size)
	opts.Motion = motion
	o := w.NewObject(pos, 0, pos)
	require.NoError(t, Configure(o, opts))
	t.Cleanup(o.Release)
	return o
}

func stepFor(w *World, seconds float64) {
	const dt = 1.0 / 60
	for elapsed := 0.0; elapsed < seconds; elapsed += dt {
		w.Step(dt)
	}
}

func TestGravityScale(t *testing.T) {
	w := newTestWorld()
	falling := spawnBox(t, w, dmath.Vec2{X: 0, Y: 0}, 32, MotionGravity)
	floating := spawnBox(t, w, dmath.Vec2{X: 10, Y: 0}, 32, MotionNoGravity)

	stepFor(w, 0.5)

	assert.Greater(t, falling.Position().Y, 0.5)
	assert.InDelta(t, 0, floating.Position().Y, 1e-9)
}

func TestContactListenerReceivesBegin(t *testing.T) {
	w := newTestWorld()
	l := &recordingListener{}
	w.SetContactListener(l)

	ground := spawnBox(t, w, dmath.Vec2{X: 0, Y: 3}, 64, MotionManual)
	box := spawnBox(t, w, dmath.Vec2{X: 0, Y: 0}, 32, MotionGravity)

	stepFor(w, 2)

	require.NotEmpty(t, l.begins)
	c := l.begins[0]
	bodies := []any{c.ShapeA.Body(), c.ShapeB.Body()}
	assert.Contains(t, bodies, ground.Body())
	assert.Contains(t, bodies, box.Body())
	assert.Less(t, box.Position().Y, 3.0, "box rests on the ground")
}

func TestListenerSurvivesRecreate(t *testing.T) {
	w := newTestWorld()
	l := &recordingListener{}
	w.SetContactListener(l)
	w.Recreate()

	spawnBox(t, w, dmath.Vec2{X: 0, Y: 3}, 64, MotionManual)
	spawnBox(t, w, dmath.Vec2{X: 0, Y: 0}, 32, MotionGravity)
	stepFor(w, 2)

	assert.NotEmpty(t, l.begins)
}

func TestEmptyMaskNeverCollides(t *testing.T) {
	w := newTestWorld()
	l := &recordingListener{}
	w.SetContactListener(l)

	ground := spawnBox(t, w, dmath.Vec2{X: 0, Y: 3}, 64, MotionManual)
	_, err := ApplyOption(ground, boxOptions(64, 64), CollisionFilter{Category: 1, CollideWith: 0})
	require.NoError(t, err)
	box := spawnBox(t, w, dmath.Vec2{X: 0, Y: 0}, 32, MotionGravity)

	stepFor(w, 2)

	assert.Empty(t, l.begins)
	assert.Greater(t, box.Position().Y, 3.0, "box fell through")
}

func TestRemovingTouchingShapesReportsEnd(t *testing.T) {
	w := newTestWorld()
	l := &recordingListener{}
	w.SetContactListener(l)

	spawnBox(t, w, dmath.Vec2{X: 0, Y: 3}, 64, MotionManual)
	box := w.NewObject(dmath.Vec2{}, 0, nil)
	opts := boxOptions(32, 32)
	require.NoError(t, Configure(box, opts))

	stepFor(w, 2)
	require.NotEmpty(t, l.begins)

	box.Release()
	assert.Len(t, l.ends, len(l.begins))
}
