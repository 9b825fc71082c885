package driver

import (
	"strings"
	"testing"

	"impulse/internal/diag"
	"impulse/internal/source"
)

func TestAppendTimingDiagnostic_BypassesCap(t *testing.T) {
	bag := diag.NewBag(1)
	bag.Add(diag.NewWarning(diag.RctNonReactiveMutation, source.Span{}, "fills the cap"))

	appendTimingDiagnostic(bag, timingPayload{Kind: "file", TotalMS: 12.5})

	if bag.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", bag.Len())
	}
	last := bag.Items()[1]
	if last.Code != diag.ObsTimings || last.Severity != diag.SevInfo {
		t.Errorf("timing entry = %s %v", last.Code.ID(), last.Severity)
	}
	if !strings.HasPrefix(last.Message, "timings (file): total") {
		t.Errorf("Message = %q", last.Message)
	}
	if len(last.Notes) != 1 || !strings.Contains(last.Notes[0].Msg, "total_ms") {
		t.Errorf("Notes = %+v, want one JSON payload", last.Notes)
	}
}

func TestAppendTimingDiagnostic_DefaultKind(t *testing.T) {
	bag := diag.NewBag(4)
	appendTimingDiagnostic(bag, timingPayload{TotalMS: 3})

	if bag.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", bag.Len())
	}
	if msg := bag.Items()[0].Message; !strings.HasPrefix(msg, "timings (pipeline):") {
		t.Errorf("Message = %q", msg)
	}
}

func TestAppendTimingDiagnostic_NamedPath(t *testing.T) {
	bag := diag.NewBag(4)
	appendTimingDiagnostic(bag, timingPayload{Kind: "file", Path: "src/App.tsx", TotalMS: 0.25})

	msg := bag.Items()[0].Message
	if !strings.Contains(msg, "src/App.tsx") {
		t.Errorf("Message = %q, want the path named", msg)
	}
}
