package geometry

import "math"

// degenerateArea is the signed-area threshold below which a polygon is
// treated as collinear and its centroid falls back to the vertex mean.
const degenerateArea = 1e-6

// FlatToPoints converts a flat x0,y0,x1,y1,... coordinate list to points.
// A trailing unpaired coordinate is ignored.
func FlatToPoints(flat []float64) []Point2D {
	n := len(flat) / 2
	points := make([]Point2D, n)
	for i := 0; i < n; i++ {
		points[i] = Point2D{X: flat[2*i], Y: flat[2*i+1]}
	}
	return points
}

// PointsToFlat converts points to a flat x0,y0,x1,y1,... coordinate list.
func PointsToFlat(points []Point2D) []float64 {
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	return flat
}

// VertexCount returns the number of complete (x,y) pairs in a flat list.
func VertexCount(flat []float64) int {
	return len(flat) / 2
}

// IsClosedPolygon reports whether a flat coordinate list is well formed:
// an even number of coordinates describing at least three vertices.
func IsClosedPolygon(flat []float64) bool {
	return len(flat)%2 == 0 && len(flat) >= 6
}

// PointInPolygon tests if (x, y) is inside the polygon described by a flat
// coordinate list using ray casting. Each edge (i, i-1) toggles the result
// when a horizontal ray from the point towards +X crosses it. Points on the
// boundary may be classified either way.
func PointInPolygon(x, y float64, flat []float64) bool {
	n := VertexCount(flat)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := flat[2*i], flat[2*i+1]
		xj, yj := flat[2*j], flat[2*j+1]

		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}

	return inside
}

// SignedArea returns the signed area of the polygon (positive when the
// vertices wind counter-clockwise in a Y-up frame).
func SignedArea(flat []float64) float64 {
	n := VertexCount(flat)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}

// Centroid computes the centroid (average position) of a set of points.
func Centroid(points []Point2D) Point2D {
	if len(points) == 0 {
		return Point2D{}
	}
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(points))
	return Point2D{X: sumX / n, Y: sumY / n}
}

// PolygonCentroid returns the area-weighted centroid of a polygon given as a
// flat coordinate list. Polygons with fewer than three vertices or an area
// below 1e-6 fall back to the arithmetic mean of their vertices.
func PolygonCentroid(flat []float64) Point2D {
	points := FlatToPoints(flat)
	if len(points) < 3 {
		return Centroid(points)
	}

	area := SignedArea(flat)
	if math.Abs(area) < degenerateArea {
		return Centroid(points)
	}

	var cx, cy float64
	n := len(points)
	for i := 0; i < n; i++ {
		p, q := points[i], points[(i+1)%n]
		cross := p.X*q.Y - q.X*p.Y
		cx += (p.X + q.X) * cross
		cy += (p.Y + q.Y) * cross
	}

	factor := 1 / (6 * area)
	c := Point2D{X: cx * factor, Y: cy * factor}
	if math.IsNaN(c.X) || math.IsNaN(c.Y) || math.IsInf(c.X, 0) || math.IsInf(c.Y, 0) {
		return Centroid(points)
	}
	return c
}

// RectangleCorners returns the four corners of the axis-aligned rectangle
// spanned by anchor and corner, as a flat list starting at the anchor and
// proceeding anchor -> (corner.X, anchor.Y) -> corner -> (anchor.X, corner.Y).
func RectangleCorners(anchor, corner Point2D) []float64 {
	return []float64{
		anchor.X, anchor.Y,
		corner.X, anchor.Y,
		corner.X, corner.Y,
		anchor.X, corner.Y,
	}
}
