package canvas_test

import (
	"testing"

	"pairmap/internal/canvas"
	"pairmap/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlay_RemoteStrokeLifecycle(t *testing.T) {
	overlay := canvas.NewOverlay()

	overlay.ApplyStarted("s1", "#E11D48", 4)
	overlay.ApplyUpdated("s1", []geo.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}})
	overlay.ApplyUpdated("s1", []geo.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}})
	overlay.ApplyEnded("s1")

	strokes := overlay.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, "s1", strokes[0].ID)
	assert.Equal(t, "#E11D48", strokes[0].Color)
	assert.Equal(t, 4, strokes[0].Width)
	// 每次更新都是完整点列表，最终形状即最后一次更新
	assert.Len(t, strokes[0].Screen, 4)
}

func TestOverlay_DuplicateStartIsIdempotent(t *testing.T) {
	overlay := canvas.NewOverlay()

	overlay.ApplyStarted("s1", "#E11D48", 4)
	overlay.ApplyUpdated("s1", []geo.Point{{X: 0, Y: 0}, {X: 1, Y: 1}})
	overlay.ApplyStarted("s1", "#000000", 9)

	strokes := overlay.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, "#E11D48", strokes[0].Color, "a repeated start must not reset the stroke")
	assert.Len(t, strokes[0].Screen, 2)
}

func TestOverlay_UpdateForUnknownStrokeCreatesFallback(t *testing.T) {
	overlay := canvas.NewOverlay()

	// 中途加入的会话可能错过 stroke_start，更新仍需要可渲染
	overlay.ApplyUpdated("ghost", []geo.Point{{X: 5, Y: 5}, {X: 6, Y: 6}})

	strokes := overlay.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, canvas.DefaultRemoteColor, strokes[0].Color)
	assert.Equal(t, canvas.DefaultRemoteWidth, strokes[0].Width)
}

func TestOverlay_ClearRemovesAll(t *testing.T) {
	overlay := canvas.NewOverlay()
	overlay.ApplyStarted("s1", "#E11D48", 4)
	overlay.ApplyStarted("s2", "#3B82F6", 2)

	overlay.Clear()

	assert.Empty(t, overlay.Strokes())
}
