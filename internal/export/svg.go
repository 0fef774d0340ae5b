package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/orbitsim/internal/twobody"
)

const (
	body1Color = "#00ff88"
	body2Color = "#ff8800"
)

type point struct{ X, Y float64 }

// OrbitToSVG draws the paths of both bodies in the first two coordinates,
// sharing one set of bounds so the relative geometry is preserved.
func OrbitToSVG(positions []twobody.Position, width, height int) string {
	if len(positions) < 2 {
		return ""
	}

	paths := [2][]point{
		make([]point, len(positions)),
		make([]point, len(positions)),
	}
	for i, p := range positions {
		paths[0][i] = point{p.Body1[0], p.Body1[1]}
		paths[1][i] = point{p.Body2[0], p.Body2[1]}
	}

	// Find bounds
	minX, maxX := paths[0][0].X, paths[0][0].X
	minY, maxY := paths[0][0].Y, paths[0][0].Y
	for _, path := range paths {
		for _, p := range path {
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

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for k, color := range []string{body1Color, body2Color} {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for i, p := range paths[k] {
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)

			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// WriteSVG writes the orbit drawing of positions to w.
func WriteSVG(w io.Writer, positions []twobody.Position, width, height int) error {
	_, err := io.WriteString(w, OrbitToSVG(positions, width, height))
	return err
}
