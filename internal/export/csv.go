package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/twobody"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteStates writes one row per state. Columns are t, r0..rN-1, v0..vN-1;
// a trailing odd slot is written as x<i>.
func WriteStates(w io.Writer, states []dynamo.State) error {
	cw := csv.NewWriter(w)

	if len(states) == 0 {
		cw.Flush()
		return cw.Error()
	}

	n := len(states[0])
	half := (n - 1) / 2
	header := []string{"t"}
	for i := 0; i < half; i++ {
		header = append(header, fmt.Sprintf("r%d", i))
	}
	for i := 0; i < half; i++ {
		header = append(header, fmt.Sprintf("v%d", i))
	}
	for i := 1 + 2*half; i < n; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}

	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for i, x := range states {
		if len(x) != n {
			return errors.Wrapf(dynamo.ErrDimensionMismatch, "row %d has %d columns, want %d", i, len(x), n)
		}
		row := make([]string, 0, n)
		for _, val := range x {
			row = append(row, formatFloat(val))
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "writing row %d", i)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WritePositions writes the absolute positions of both bodies per row.
func WritePositions(w io.Writer, positions []twobody.Position) error {
	cw := csv.NewWriter(w)

	if len(positions) == 0 {
		cw.Flush()
		return cw.Error()
	}

	dim := len(positions[0].Body1)
	header := []string{"t"}
	for body := 1; body <= 2; body++ {
		for i := 0; i < dim; i++ {
			header = append(header, fmt.Sprintf("body%d_%d", body, i))
		}
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for i, p := range positions {
		if len(p.Body1) != dim || len(p.Body2) != dim {
			return errors.Wrapf(dynamo.ErrDimensionMismatch, "row %d", i)
		}
		row := []string{formatFloat(p.Time)}
		for _, val := range p.Body1 {
			row = append(row, formatFloat(val))
		}
		for _, val := range p.Body2 {
			row = append(row, formatFloat(val))
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "writing row %d", i)
		}
	}

	cw.Flush()
	return cw.Error()
}
