package geo_test

import (
	"testing"

	"pairmap/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplify_ShortInputsUnchanged(t *testing.T) {
	assert.Empty(t, geo.Simplify(nil, 1.0))
	assert.Empty(t, geo.Simplify([]geo.Point{}, 1.0))

	single := []geo.Point{{X: 3, Y: 4}}
	assert.Equal(t, single, geo.Simplify(single, 1.0))

	two := []geo.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}
	assert.Equal(t, two, geo.Simplify(two, 1.0))
}

func TestSimplify_CollinearCollapsesToEndpoints(t *testing.T) {
	points := []geo.Point{
		{X: 0, Y: 0},
		{X: 1, Y: 1},
		{X: 2, Y: 2},
		{X: 3, Y: 3},
		{X: 4, Y: 4},
	}

	result := geo.Simplify(points, 0.1)

	require.Len(t, result, 2)
	assert.Equal(t, geo.Point{X: 0, Y: 0}, result[0])
	assert.Equal(t, geo.Point{X: 4, Y: 4}, result[1])
}

func TestSimplify_PreservesSharpCorner(t *testing.T) {
	// L 形路径，拐角点必须保留
	points := []geo.Point{
		{X: 0, Y: 0},
		{X: 5, Y: 0},
		{X: 5, Y: 5},
	}

	result := geo.Simplify(points, 0.5)

	require.Len(t, result, 3)
	assert.Equal(t, geo.Point{X: 5, Y: 0}, result[1])
}

func TestSimplify_ToleranceControlsCollapse(t *testing.T) {
	points := []geo.Point{
		{X: 0, Y: 0},
		{X: 1, Y: 0.1},
		{X: 2, Y: 0},
	}

	// 低容差保留凸起
	low := geo.Simplify(points, 0.01)
	assert.GreaterOrEqual(t, len(low), 3)

	// 高容差移除凸起
	high := geo.Simplify(points, 1.0)
	assert.Len(t, high, 2)
}

func TestSimplify_DegenerateSegment(t *testing.T) {
	// 首尾重合：垂直距离退化为到该点的欧氏距离
	points := []geo.Point{
		{X: 0, Y: 0},
		{X: 3, Y: 4},
		{X: 0, Y: 0},
	}

	result := geo.Simplify(points, 1.0)
	require.Len(t, result, 3)
}

func TestSimplifyGeo(t *testing.T) {
	short := []geo.GeoPoint{{Lat: 51.5074, Lng: -0.1278}}
	assert.Equal(t, short, geo.SimplifyGeo(short, geo.GeoTolerance))

	// 近似共线的地理点应被简化
	points := []geo.GeoPoint{
		{Lat: 51.5074, Lng: -0.1278},
		{Lat: 51.5075, Lng: -0.1277},
		{Lat: 51.5076, Lng: -0.1276},
		{Lat: 51.5077, Lng: -0.1275},
	}
	result := geo.SimplifyGeo(points, 0.001)
	assert.LessOrEqual(t, len(result), len(points))
	assert.Equal(t, points[0], result[0])
	assert.Equal(t, points[len(points)-1], result[len(result)-1])
}

func TestCompressionRatio(t *testing.T) {
	assert.Equal(t, 0, geo.CompressionRatio(0, 0))
	assert.Equal(t, 0, geo.CompressionRatio(10, 10))
	assert.Equal(t, 50, geo.CompressionRatio(100, 50))
	assert.Equal(t, 75, geo.CompressionRatio(100, 25))
	assert.Equal(t, 100, geo.CompressionRatio(100, 0))
}

func FuzzSimplify(f *testing.F) {
	f.Add(int64(42), 5, 1.0)
	f.Add(int64(7), 100, 0.001)
	f.Fuzz(func(t *testing.T, seed int64, n int, tolerance float64) {
		if n < 0 || n > 1000 || tolerance < 0 || tolerance > 1e6 {
			t.Skip()
		}
		// 用种子构造确定性的伪随机路径
		points := make([]geo.Point, n)
		s := uint64(seed)
		for i := range points {
			s = s*6364136223846793005 + 1442695040888963407
			points[i] = geo.Point{
				X: float64(int64(s>>33)%2000) / 10,
				Y: float64(int64(s>>13)%2000) / 10,
			}
		}

		result := geo.Simplify(points, tolerance)

		// 结果不会比输入长
		if len(result) > len(points) {
			t.Fatalf("simplified path longer than input: %d > %d", len(result), len(points))
		}
		// 长度 >= 3 的输入首尾点必须保留
		if len(points) >= 3 {
			if result[0] != points[0] || result[len(result)-1] != points[len(points)-1] {
				t.Fatal("endpoints not preserved")
			}
			if len(result) < 2 {
				t.Fatalf("simplified path shorter than 2 points: %d", len(result))
			}
		}
	})
}
