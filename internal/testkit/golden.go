package testkit

import (
	"fmt"

	"impulse/internal/diag"
)

// DiagLines renders a bag one line per diagnostic, in bag order, for
// golden comparisons in tests:
//
//	warning static-mutation 23-35: mutating "items" has no effect ...
func DiagLines(bag *diag.Bag) []string {
	items := bag.Items()
	out := make([]string, 0, len(items))
	for _, d := range items {
		out = append(out, fmt.Sprintf("%s %s %d-%d: %s",
			d.Severity.Label(), d.Code.Name(), d.Primary.Start, d.Primary.End, d.Message))
	}
	return out
}
