package analysis

// BindingKind is the reactivity classification of a component-local
// binding.
type BindingKind uint8

const (
	// KindStatic bindings are captured once; reads and writes are left
	// untouched by every transformer.
	KindStatic BindingKind = iota
	// KindSignal bindings are declared mutable (`let` or `var`) and become
	// mutable reactive containers.
	KindSignal
	// KindComputed bindings are `const` declarations whose initializer
	// reads at least one signal or computed binding; they become memoized
	// derivations.
	KindComputed
)

func (k BindingKind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindSignal:
		return "signal"
	case KindComputed:
		return "computed"
	default:
		return "unknown"
	}
}

// Reactive reports whether reads of a binding of this kind must be
// rewritten to go through the reactive runtime.
func (k BindingKind) Reactive() bool {
	return k == KindSignal || k == KindComputed
}
