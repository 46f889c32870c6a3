package render

import (
	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
)

// poseConnections is the 33-point body topology: index pairs joined by a
// bone segment.
var poseConnections = [][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 7},
	{0, 4}, {4, 5}, {5, 6}, {6, 8},
	{9, 10},
	{11, 12}, {11, 13}, {13, 15}, {15, 17}, {15, 19}, {15, 21}, {17, 19},
	{12, 14}, {14, 16}, {16, 18}, {16, 20}, {16, 22}, {18, 20},
	{11, 23}, {12, 24}, {23, 24},
	{23, 25}, {24, 26}, {25, 27}, {26, 28},
	{27, 29}, {28, 30}, {29, 31}, {30, 32}, {27, 31}, {28, 32},
}

type rgb struct{ r, g, b byte }

// Skeleton draws pose landmarks and their connections onto RGB24 frames.
// The same instance renders both the overlay and the skeleton-only canvas.
type Skeleton struct {
	visibilityThreshold float64
	pointRadius         int
	pointColor          rgb
	boneColor           rgb
}

func NewSkeleton() *Skeleton {
	return &Skeleton{
		visibilityThreshold: 0.5,
		pointRadius:         4,
		pointColor:          rgb{r: 255, g: 64, b: 64},
		boneColor:           rgb{r: 64, g: 255, b: 64},
	}
}

func (s *Skeleton) Draw(frame *entity.Frame, landmarks entity.PoseLandmarks) {
	for _, conn := range poseConnections {
		if conn[0] >= len(landmarks) || conn[1] >= len(landmarks) {
			continue
		}
		a, b := landmarks[conn[0]], landmarks[conn[1]]
		if a.Visibility < s.visibilityThreshold || b.Visibility < s.visibilityThreshold {
			continue
		}
		ax, ay := project(a, frame)
		bx, by := project(b, frame)
		drawLine(frame, ax, ay, bx, by, s.boneColor)
	}

	for _, lm := range landmarks {
		if lm.Visibility < s.visibilityThreshold {
			continue
		}
		x, y := project(lm, frame)
		drawDisc(frame, x, y, s.pointRadius, s.pointColor)
	}
}

func project(lm entity.Landmark, frame *entity.Frame) (int, int) {
	return int(lm.X * float64(frame.Width)), int(lm.Y * float64(frame.Height))
}

func setPixel(frame *entity.Frame, x, y int, c rgb) {
	if x < 0 || y < 0 || x >= frame.Width || y >= frame.Height {
		return
	}
	i := (y*frame.Width + x) * 3
	frame.Pix[i] = c.r
	frame.Pix[i+1] = c.g
	frame.Pix[i+2] = c.b
}

func drawDisc(frame *entity.Frame, cx, cy, radius int, c rgb) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				setPixel(frame, cx+dx, cy+dy, c)
			}
		}
	}
}

// drawLine is Bresenham's algorithm over the packed RGB buffer.
func drawLine(frame *entity.Frame, x0, y0, x1, y1 int, c rgb) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		setPixel(frame, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
