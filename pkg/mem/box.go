package mem

// Box is a managed wrapper around a single integer. Boxes have no finalizer
// and no owned relations; they exist so that scalar values (in particular
// the open-bound sentinels used by structural validators) can participate in
// comparator-based checks as ordinary managed objects.
type Box struct {
	Object

	value int64
}

// NewBox allocates a box holding value, with one reference.
func NewBox(value int64) *Box {
	box := &Box{value: value}
	Initialize(box, nil)

	return box
}

// Value unwraps the boxed integer.
func (b *Box) Value() int64 {
	return b.value
}
