package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/twobody"
)

func TestPhasePortrait(t *testing.T) {
	var states []dynamo.State
	for i := 0; i < 100; i++ {
		a := 2 * math.Pi * float64(i) / 100
		states = append(states, dynamo.State{float64(i), math.Cos(a), math.Sin(a)})
	}

	p := NewPhasePortrait(states, 1, 2)
	if p == nil || len(p.Series) != 1 || len(p.Series[0].Points) != 100 {
		t.Fatalf("NewPhasePortrait() = %+v", p)
	}

	art := PortraitToASCII(p, 40, 20)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 20 {
		t.Errorf("rendered %d rows, want 20", len(lines))
	}
	if !strings.ContainsRune(art, '•') {
		t.Error("no points rendered")
	}
	if !strings.ContainsRune(art, '│') || !strings.ContainsRune(art, '─') {
		t.Error("axes through the origin not drawn")
	}
}

func TestPhasePortraitBadIndex(t *testing.T) {
	if p := NewPhasePortrait([]dynamo.State{{0, 1}}, 0, 5); p != nil {
		t.Errorf("NewPhasePortrait() = %+v, want nil", p)
	}
	if p := NewPhasePortrait(nil, 0, 1); p != nil {
		t.Errorf("NewPhasePortrait(nil) = %+v, want nil", p)
	}
	if art := PortraitToASCII(nil, 10, 10); art != "" {
		t.Errorf("PortraitToASCII(nil) = %q", art)
	}
}

func TestOrbitPortrait(t *testing.T) {
	positions := []twobody.Position{
		{Time: 0, Body1: []float64{-1, 0}, Body2: []float64{1, 0}},
		{Time: 1, Body1: []float64{0, -1}, Body2: []float64{0, 1}},
	}
	p := NewOrbitPortrait(positions)
	if p == nil || len(p.Series) != 2 {
		t.Fatalf("NewOrbitPortrait() = %+v", p)
	}
	if p.Series[1].Points[1] != (Point{X: 0, Y: 1}) {
		t.Errorf("body 2 point = %+v", p.Series[1].Points[1])
	}

	art := PortraitToASCII(p, 21, 11)
	if !strings.ContainsRune(art, '•') || !strings.ContainsRune(art, '∘') {
		t.Errorf("both bodies not rendered:\n%s", art)
	}

	for _, size := range [][2]int{{-1, 10}, {10, -1}, {0, 10}, {10, 0}} {
		if art := PortraitToASCII(p, size[0], size[1]); art != "" {
			t.Errorf("PortraitToASCII(%d, %d) = %q, want empty", size[0], size[1], art)
		}
	}
}

func TestDominantPeriod(t *testing.T) {
	const dt = 0.01
	data := make([]float64, 2000)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*float64(i)*dt/2)
	}

	got := DominantPeriod(data, dt)
	if math.Abs(got-2) > 0.05 {
		t.Errorf("DominantPeriod() = %v, want 2", got)
	}
}

func TestDominantPeriodFlat(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = 1.5
	}
	if got := DominantPeriod(data, 0.1); got != 0 {
		t.Errorf("DominantPeriod(constant) = %v, want 0", got)
	}
	if got := DominantPeriod([]float64{1}, 0.1); got != 0 {
		t.Errorf("DominantPeriod(short) = %v, want 0", got)
	}
}
