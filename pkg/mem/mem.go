// Package mem implements a reference-counted ownership layer for intrusive
// data structures.
//
// A managed value embeds [Object] and is armed with [Initialize], which sets
// its reference count to one and attaches an optional [Finalizer]. [Retain]
// and [Release] adjust the count; the instant a release drops the count to
// zero the finalizer runs, exactly once. There is no deferred collection:
// ownership is torn down eagerly and iteratively through the finalizers,
// which release the references the finalized object owns.
//
// The package is single-threaded by contract. Counts are plain integers and
// no locking is performed; callers needing concurrent access must serialize
// it themselves.
package mem

import "runtime"

// Finalizer is invoked exactly once, when an object's reference count drops
// to zero. It must release every reference the object owns and must not
// resurrect the object.
type Finalizer func()

// Object is the reference-counting header embedded in managed values.
//
// The zero value is unarmed; it must be initialized through [Initialize]
// before any Retain/Release traffic.
type Object struct {
	refs      int
	finalizer Finalizer
}

// Managed is satisfied by any value embedding [Object].
type Managed interface {
	header() *Object
}

func (o *Object) header() *Object { return o }

// CallSite identifies the source location of an allocation.
type CallSite struct {
	File string
	Line int
}

// Observer receives allocation lifecycle events. It is the injection point
// for leak diagnostics; see [Tracker].
type Observer interface {
	// Allocated is called once per Initialize, with the allocation site.
	Allocated(obj Managed, site CallSite)

	// Released is called once per object, just before its finalizer runs.
	Released(obj Managed)
}

// observer is the installed instrumentation hook. Nil (disabled) by default:
// with no observer installed, Initialize does not capture call sites and the
// allocation path has no extra cost.
var observer Observer

// SetObserver installs obs as the allocation observer. Passing nil disables
// instrumentation. Swapping observers while objects are live leaves the old
// observer with stale entries; install before allocating.
func SetObserver(obs Observer) {
	observer = obs
}

// Initialize arms a freshly constructed managed value: reference count one
// and the given optional finalizer. It is the construction half of the
// ownership contract; the caller supplies the payload, Initialize supplies
// the lifetime.
//
// Allocation failure is not modeled: if the payload could not be built the
// runtime has already aborted.
func Initialize(obj Managed, finalizer Finalizer) {
	hdr := obj.header()
	doAssert(hdr.refs == 0)

	hdr.refs = 1
	hdr.finalizer = finalizer

	if observer != nil {
		observer.Allocated(obj, callSite(2))
	}
}

// Retain increments obj's reference count and returns obj, so call sites can
// chain the retain into an assignment.
func Retain[T Managed](obj T) T {
	hdr := obj.header()
	doAssert(hdr.refs > 0)

	hdr.refs++

	return obj
}

// Release decrements obj's reference count. On the transition to zero the
// installed observer is notified, then the finalizer (if any) runs.
//
// Releasing an object whose count already reached zero is a caller error and
// panics.
func Release(obj Managed) {
	hdr := obj.header()
	doAssert(hdr.refs > 0)

	hdr.refs--
	if hdr.refs > 0 {
		return
	}

	if observer != nil {
		observer.Released(obj)
	}

	if hdr.finalizer != nil {
		finalize := hdr.finalizer
		hdr.finalizer = nil
		finalize()
	}
}

// RefCount reports obj's current reference count. It exists for diagnostics
// and invariant tests; production logic must not branch on exact counts.
func RefCount(obj Managed) int {
	return obj.header().refs
}

// callSite captures the file and line skip frames above the caller.
func callSite(skip int) CallSite {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return CallSite{File: "<unknown>", Line: 0}
	}

	return CallSite{File: file, Line: line}
}

func doAssert(condition bool) {
	if !condition {
		panic("mem: reference count corrupted")
	}
}
