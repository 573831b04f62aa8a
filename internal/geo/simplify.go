// Package geo 提供画布坐标类型和路径简化算法（Ramer-Douglas-Peucker）。
// 该包是纯计算，不依赖任何 I/O，可直接进行 fuzz 测试。
package geo

import "math"

// Point 表示屏幕空间中的一个点（像素坐标）。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GeoPoint 表示地理空间中的一个点（经纬度，持久化使用的形式）。
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// 默认容差。地理坐标以度为单位，数值量级远小于像素，
// 因此地理容差比屏幕容差小若干个数量级。
const (
	ScreenTolerance = 1.0
	GeoTolerance    = 0.00001
)

// Simplify 使用 Ramer-Douglas-Peucker 算法简化路径。
// 长度小于 3 的输入原样返回（两点路径无法继续简化）。
// 返回的点序列保持原有顺序，首尾点一定保留。
func Simplify(points []Point, tolerance float64) []Point {
	if len(points) < 3 {
		return points
	}

	// 找到距离首尾连线垂直距离最大的点
	first := points[0]
	last := points[len(points)-1]
	maxDist := 0.0
	maxIndex := 0
	for i := 1; i < len(points)-1; i++ {
		d := perpendicularDistance(points[i], first, last)
		if d > maxDist {
			maxDist = d
			maxIndex = i
		}
	}

	// 超过容差则以该点为界递归简化左右两段，拼接时分割点只保留一次
	if maxDist > tolerance {
		left := Simplify(points[:maxIndex+1], tolerance)
		right := Simplify(points[maxIndex:], tolerance)
		result := make([]Point, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	// 整段塌缩为首尾两点
	return []Point{first, last}
}

// SimplifyGeo 是 Simplify 的地理坐标变体。
// 容差应使用度量级的数值（参考 GeoTolerance）。
func SimplifyGeo(points []GeoPoint, tolerance float64) []GeoPoint {
	if len(points) < 3 {
		return points
	}

	xy := make([]Point, len(points))
	for i, p := range points {
		xy[i] = Point{X: p.Lat, Y: p.Lng}
	}
	simplified := Simplify(xy, tolerance)

	result := make([]GeoPoint, len(simplified))
	for i, p := range simplified {
		result[i] = GeoPoint{Lat: p.X, Lng: p.Y}
	}
	return result
}

// CompressionRatio 计算简化前后的压缩率（百分比，四舍五入）。
// 空输入返回 0。
func CompressionRatio(before, after int) int {
	if before == 0 {
		return 0
	}
	return int(math.Round((1 - float64(after)/float64(before)) * 100))
}

// perpendicularDistance 计算点到线段的垂直距离。
// 线段退化为一个点时返回到该点的欧氏距离。
func perpendicularDistance(p, lineStart, lineEnd Point) float64 {
	dx := lineEnd.X - lineStart.X
	dy := lineEnd.Y - lineStart.Y

	if dx == 0 && dy == 0 {
		return math.Hypot(p.X-lineStart.X, p.Y-lineStart.Y)
	}

	t := ((p.X-lineStart.X)*dx + (p.Y-lineStart.Y)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))

	projX := lineStart.X + t*dx
	projY := lineStart.Y + t*dy
	return math.Hypot(p.X-projX, p.Y-projY)
}
