package viewer

import "time"

// DefaultChartCapacity matches the dashboard's rolling window.
const DefaultChartCapacity = 20

// Point is one chart sample.
type Point struct {
	At    time.Time
	Value float64
}

// ChartBuffer is a fixed-length sliding window of samples. Appending past
// capacity evicts the oldest point first. Not safe for concurrent use; the
// agent serializes access.
type ChartBuffer struct {
	capacity int
	points   []Point
}

// NewChartBuffer constructs a buffer. Non-positive capacities fall back to
// the default window.
func NewChartBuffer(capacity int) *ChartBuffer {
	if capacity <= 0 {
		capacity = DefaultChartCapacity
	}
	return &ChartBuffer{capacity: capacity}
}

// Append adds one sample, evicting the oldest when the window is full.
func (b *ChartBuffer) Append(point Point) {
	if len(b.points) == b.capacity {
		copy(b.points, b.points[1:])
		b.points[len(b.points)-1] = point
		return
	}
	b.points = append(b.points, point)
}

// Points returns a copy of the window, oldest first.
func (b *ChartBuffer) Points() []Point {
	out := make([]Point, len(b.points))
	copy(out, b.points)
	return out
}

// Len returns the number of buffered samples.
func (b *ChartBuffer) Len() int {
	return len(b.points)
}
