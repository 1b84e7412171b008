package gesture

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Freehand/internal/geom"
)

type recorder struct {
	calls []string
}

func (r *recorder) BeginStroke(p geom.Vec, pressure float64) {
	r.calls = append(r.calls, fmt.Sprintf("begin %g,%g", p.X, p.Y))
}

func (r *recorder) ExtendStroke(p geom.Vec, pressure float64) {
	r.calls = append(r.calls, fmt.Sprintf("extend %g,%g", p.X, p.Y))
}

func (r *recorder) CommitStroke()  { r.calls = append(r.calls, "commit") }
func (r *recorder) AbandonStroke() { r.calls = append(r.calls, "abandon") }
func (r *recorder) CameraChanged() { r.calls = append(r.calls, "camera") }

func newRouter() (*Router, *recorder, *geom.Camera) {
	cam := geom.NewCamera(geom.DefaultLimits())
	h := &recorder{}
	return NewRouter(cam, h), h, cam
}

func down(id int64, x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerDown, ID: id, Pos: geom.V(x, y), Pressure: 1, Primary: id == 1}
}

func move(id int64, x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerMove, ID: id, Pos: geom.V(x, y), Pressure: 1}
}

func up(id int64) PointerEvent { return PointerEvent{Kind: PointerUp, ID: id} }

func TestPointerDrawLifecycle(t *testing.T) {
	r, h, _ := newRouter()
	r.Pointer(down(1, 1, 1))
	assert.Equal(t, Drawing, r.State())
	r.Pointer(move(1, 2, 2))
	r.Pointer(up(1))
	assert.Equal(t, Idle, r.State())
	assert.Equal(t, []string{"begin 1,1", "extend 2,2", "commit"}, h.calls)
}

func TestPointerLeaveCommitsCancelAbandons(t *testing.T) {
	r, h, _ := newRouter()
	r.Pointer(down(1, 0, 0))
	r.Pointer(PointerEvent{Kind: PointerLeave, ID: 1})
	r.Pointer(down(1, 0, 0))
	r.Pointer(PointerEvent{Kind: PointerCancel, ID: 1})
	assert.Equal(t, []string{"begin 0,0", "commit", "begin 0,0", "abandon"}, h.calls)
	assert.Equal(t, Idle, r.State())
}

func TestPointerOutOfOrderEventsIgnored(t *testing.T) {
	r, h, _ := newRouter()
	r.Pointer(move(1, 5, 5))
	r.Pointer(up(1))
	r.Pointer(PointerEvent{Kind: PointerLeave, ID: 7})
	assert.Empty(t, h.calls)
	assert.Equal(t, Idle, r.State())
}

func TestNonPrimaryPointerDoesNotDraw(t *testing.T) {
	r, h, _ := newRouter()
	r.Pointer(PointerEvent{Kind: PointerDown, ID: 4, Pos: geom.V(1, 1)})
	assert.Equal(t, Idle, r.State())
	assert.Empty(t, h.calls)
}

func TestSecondContactAbandonsStrokeAndPinches(t *testing.T) {
	r, h, _ := newRouter()
	r.Pointer(down(1, 10, 10))
	r.Pointer(move(1, 20, 10))
	r.Pointer(down(2, 110, 10))

	assert.Equal(t, Pinching, r.State())
	assert.Equal(t, []string{"begin 10,10", "extend 20,10", "abandon"}, h.calls)
	assert.InDelta(t, 90, r.Pinch().InitialDistance, 1e-9)
}

func TestPinchMovesCameraAndIgnoresDrawing(t *testing.T) {
	r, h, cam := newRouter()
	r.Pointer(down(1, 0, 0))
	r.Pointer(down(2, 100, 0))
	h.calls = nil

	r.Pointer(move(2, 200, 0))
	assert.InDelta(t, 2.0, cam.Scale, 1e-9)
	assert.Equal(t, []string{"camera"}, h.calls)

	// lifting one finger ends the pinch; the remaining one does not draw
	r.Pointer(up(2))
	assert.Equal(t, Idle, r.State())
	r.Pointer(move(1, 50, 50))
	assert.Equal(t, []string{"camera"}, h.calls)
	r.Pointer(up(1))
	assert.Equal(t, []string{"camera"}, h.calls)
}

func TestThirdContactDuringPinch(t *testing.T) {
	r, h, cam := newRouter()
	r.Pointer(down(1, 0, 0))
	r.Pointer(down(2, 100, 0))
	r.Pointer(down(3, 50, 50))
	assert.Equal(t, Pinching, r.State())

	// moving the untracked contact does nothing
	r.Pointer(move(3, 80, 80))
	assert.Equal(t, 1.0, cam.Scale)

	// losing a tracked contact re-seeds from the remaining two
	r.Pointer(up(1))
	assert.Equal(t, Pinching, r.State())
	assert.InDelta(t, geom.V(100, 0).Dist(geom.V(80, 80)), r.Pinch().InitialDistance, 1e-9)
	assert.NotContains(t, h.calls, "begin 50,50")
}

func TestDownAfterPinchStartsNewStroke(t *testing.T) {
	r, h, _ := newRouter()
	r.Pointer(down(1, 0, 0))
	r.Pointer(down(2, 100, 0))
	r.Pointer(up(1))
	r.Pointer(up(2))
	require.Equal(t, Idle, r.State())

	h.calls = nil
	r.Pointer(down(1, 3, 3))
	assert.Equal(t, Drawing, r.State())
	assert.Equal(t, []string{"begin 3,3"}, h.calls)
}

func TestReset(t *testing.T) {
	r, h, _ := newRouter()
	r.Pointer(down(1, 0, 0))
	r.Reset()
	assert.Equal(t, Idle, r.State())
	assert.Zero(t, r.Contacts())
	assert.Equal(t, []string{"begin 0,0", "abandon"}, h.calls)
}

func touch(kind TouchKind, pts ...geom.Vec) TouchEvent {
	ev := TouchEvent{Kind: kind}
	for i, p := range pts {
		ev.Touches = append(ev.Touches, Contact{ID: int64(i + 1), Pos: p})
	}
	return ev
}

func TestTouchDraw(t *testing.T) {
	r, h, _ := newRouter()
	r.Touch(touch(TouchStart, geom.V(1, 1)))
	r.Touch(touch(TouchMove, geom.V(2, 2)))
	r.Touch(touch(TouchEnd))
	assert.Equal(t, []string{"begin 1,1", "extend 2,2", "commit"}, h.calls)
	assert.Equal(t, Idle, r.State())
}

func TestTouchCancelAbandons(t *testing.T) {
	r, h, _ := newRouter()
	r.Touch(touch(TouchStart, geom.V(1, 1)))
	r.Touch(touch(TouchCancel))
	assert.Equal(t, []string{"begin 1,1", "abandon"}, h.calls)
}

func TestTouchPinch(t *testing.T) {
	r, h, cam := newRouter()
	r.Touch(touch(TouchStart, geom.V(10, 10)))
	r.Touch(touch(TouchStart, geom.V(10, 10), geom.V(110, 10)))
	assert.Equal(t, Pinching, r.State())
	assert.Equal(t, []string{"begin 10,10", "abandon"}, h.calls)

	mid := geom.V(60, 10)
	anchor := cam.ToDrawing(mid)
	r.Touch(touch(TouchMove, geom.V(-40, 10), geom.V(160, 10)))
	assert.InDelta(t, 2.0, cam.Scale, 1e-9)
	got := cam.ToDrawing(mid)
	assert.InDelta(t, anchor.X, got.X, 1e-9)
	assert.InDelta(t, anchor.Y, got.Y, 1e-9)

	// one finger left: back to idle, no drawing from it
	r.Touch(touch(TouchEnd, geom.V(-40, 10)))
	assert.Equal(t, Idle, r.State())
	r.Touch(touch(TouchMove, geom.V(0, 0)))
	r.Touch(touch(TouchEnd))
	assert.Equal(t, []string{"begin 10,10", "abandon", "camera"}, h.calls)
}

func TestTouchPinchTwoFingersAtOnePoint(t *testing.T) {
	r, _, cam := newRouter()
	r.Touch(touch(TouchStart, geom.V(5, 5), geom.V(5, 5)))
	r.Touch(touch(TouchMove, geom.V(0, 5), geom.V(10, 5)))
	assert.Equal(t, 1.0, cam.Scale)
	assert.True(t, cam.Offset.Finite())
}

func TestParseKinds(t *testing.T) {
	k, ok := ParsePointerKind("leave")
	assert.True(t, ok)
	assert.Equal(t, PointerLeave, k)
	_, ok = ParsePointerKind("hover")
	assert.False(t, ok)

	tk, ok := ParseTouchKind("cancel")
	assert.True(t, ok)
	assert.Equal(t, TouchCancel, tk)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pinching", Pinching.String())
	assert.Equal(t, "State(9)", State(9).String())
}
