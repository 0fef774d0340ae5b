package analysis

import (
	"strings"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/twobody"
)

type Point struct{ X, Y float64 }

// Series is one marked trajectory of a portrait.
type Series struct {
	Mark   rune
	Points []Point
}

// Portrait holds trajectories for a 2D plot.
type Portrait struct {
	Series []Series
}

// NewPhasePortrait records components xIdx and yIdx of every state.
func NewPhasePortrait(states []dynamo.State, xIdx, yIdx int) *Portrait {
	if len(states) == 0 || xIdx >= len(states[0]) || yIdx >= len(states[0]) {
		return nil
	}

	s := Series{Mark: '•', Points: make([]Point, 0, len(states))}
	for _, x := range states {
		s.Points = append(s.Points, Point{X: x[xIdx], Y: x[yIdx]})
	}
	return &Portrait{Series: []Series{s}}
}

// NewOrbitPortrait plots the first two coordinates of both bodies.
func NewOrbitPortrait(positions []twobody.Position) *Portrait {
	if len(positions) == 0 {
		return nil
	}

	b1 := Series{Mark: '•', Points: make([]Point, 0, len(positions))}
	b2 := Series{Mark: '∘', Points: make([]Point, 0, len(positions))}
	for _, p := range positions {
		b1.Points = append(b1.Points, Point{X: p.Body1[0], Y: p.Body1[1]})
		b2.Points = append(b2.Points, Point{X: p.Body2[0], Y: p.Body2[1]})
	}
	return &Portrait{Series: []Series{b1, b2}}
}

// PortraitToASCII converts a portrait to ASCII art. It returns "" when the
// canvas has no area.
func PortraitToASCII(portrait *Portrait, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if portrait == nil || len(portrait.Series) == 0 || len(portrait.Series[0].Points) == 0 {
		return ""
	}

	// Find bounds
	first := portrait.Series[0].Points[0]
	minX, maxX := first.X, first.X
	minY, maxY := first.Y, first.Y

	for _, s := range portrait.Series {
		for _, p := range s.Points {
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, s := range portrait.Series {
		for _, p := range s.Points {
			col := int((p.X - minX) / rangeX * float64(width-1))
			row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

			if row >= 0 && row < height && col >= 0 && col < width {
				canvas[row][col] = s.Mark
			}
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
