package export

import (
	"encoding/json"
	"io"
	"math"

	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/kepler"
)

type ElementsData struct {
	A      float64 `json:"a"`
	E      float64 `json:"e"`
	I      float64 `json:"i"`
	Omega  float64 `json:"omega"`
	W      float64 `json:"w"`
	M0     float64 `json:"m0"`
	Mu     float64 `json:"mu"`
	Period float64 `json:"period"`
}

type ReportData struct {
	Integrator string             `json:"integrator"`
	Mu         float64            `json:"mu"`
	Steps      int                `json:"steps"`
	Finished   bool               `json:"finished"`
	Elapsed    string             `json:"elapsed"`
	Elements   *ElementsData      `json:"elements,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
}

func elementsData(el *kepler.Elements) *ElementsData {
	if el == nil {
		return nil
	}
	return &ElementsData{
		A:      el.A,
		E:      el.E,
		I:      el.I,
		Omega:  el.Omega,
		W:      el.W,
		M0:     el.M0,
		Mu:     el.Mu,
		Period: el.Period(),
	}
}

// NewReportData flattens a report for encoding.
func NewReportData(r *experiment.Report) ReportData {
	res := r.Result
	data := ReportData{
		Integrator: r.Integrator,
		Mu:         r.System.Mu(),
		Steps:      res.StepsTaken,
		Finished:   res.Finished,
		Elapsed:    res.Elapsed.String(),
		Elements:   elementsData(r.Elements),
		Metrics:    make(map[string]float64, len(res.Metrics)),
	}
	// JSON has no encoding for NaN or Inf
	for name, v := range res.Metrics {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data.Metrics[name] = v
		}
	}
	for _, s := range res.States {
		if !s.IsValid() {
			continue
		}
		data.Times = append(data.Times, s.Time())
		data.States = append(data.States, s)
	}
	for _, err := range res.Errors {
		data.Errors = append(data.Errors, err.Error())
	}
	return data
}

// WriteJSON encodes a report as indented JSON.
func WriteJSON(w io.Writer, r *experiment.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewReportData(r))
}
