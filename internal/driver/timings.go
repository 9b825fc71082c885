package driver

import (
	"encoding/json"
	"fmt"

	"impulse/internal/diag"
	"impulse/internal/observ"
	"impulse/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic surfaces phase timings as an info diagnostic so
// every output format can carry them. Timing entries bypass the bag cap.
func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "pipeline"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("timings (%s): %s, total %.2f ms", payload.Kind, payload.Path, payload.TotalMS)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	forceAdd(bag, &diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  msg,
		Primary:  source.Span{},
		Notes: []diag.Note{
			{Span: source.Span{}, Msg: string(data)},
		},
	})
}

// forceAdd appends past the bag cap, for entries the overflow policy must
// never drop.
func forceAdd(bag *diag.Bag, d *diag.Diagnostic) {
	if bag == nil || d == nil {
		return
	}
	if bag.Add(d) {
		return
	}
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(d)
	bag.Merge(overflow)
}
