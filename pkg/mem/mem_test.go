package mem //nolint:testpackage // tests require access to unexported fields (refs, observer)

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// leakable is a minimal managed value for ownership tests.
type leakable struct {
	Object

	id int
}

func newLeakable(id int, finalizer Finalizer) *leakable {
	obj := &leakable{id: id}
	Initialize(obj, finalizer)

	return obj
}

func TestInitializeSingleReference(t *testing.T) {
	t.Parallel()

	obj := newLeakable(1, nil)
	assert.Equal(t, 1, RefCount(obj))
}

func TestRetainReturnsSameReference(t *testing.T) {
	t.Parallel()

	obj := newLeakable(1, nil)
	same := Retain(obj)

	assert.Same(t, obj, same)
	assert.Equal(t, 2, RefCount(obj))
}

func TestFinalizeExactlyOnce(t *testing.T) {
	t.Parallel()

	var log []string

	obj := newLeakable(1, nil)
	obj.finalizer = func() { log = append(log, "finalized") }

	Retain(obj)

	Release(obj)
	require.Empty(t, log, "finalizer ran before the count reached zero")

	Release(obj)
	require.Len(t, log, 1, "finalizer must run exactly once, on the second release")
}

func TestFinalizerReleasesOwnedRelations(t *testing.T) {
	t.Parallel()

	inner := newLeakable(2, nil)
	outer := newLeakable(1, func() { Release(inner) })

	require.Equal(t, 1, RefCount(inner))

	finalizedInner := false
	inner.finalizer = func() { finalizedInner = true }

	Release(outer)
	assert.True(t, finalizedInner, "cascade did not reach the owned relation")
}

func TestOverReleasePanics(t *testing.T) {
	t.Parallel()

	obj := newLeakable(1, nil)
	Release(obj)

	assert.Panics(t, func() { Release(obj) })
}

func TestRetainAfterFinalizePanics(t *testing.T) {
	t.Parallel()

	obj := newLeakable(1, nil)
	Release(obj)

	assert.Panics(t, func() { Retain(obj) })
}

func TestBoxRoundTrip(t *testing.T) {
	t.Parallel()

	box := NewBox(42)
	assert.Equal(t, int64(42), box.Value())
	assert.Equal(t, 1, RefCount(box))

	Release(box)
}

func TestBoxNegativeValue(t *testing.T) {
	t.Parallel()

	box := NewBox(-1)
	assert.Equal(t, int64(-1), box.Value())

	Release(box)
}

// Observer tests mutate the package-level hook and must not run in parallel
// with each other or with tracked allocations.

func TestTrackerRegistry(t *testing.T) {
	tracker := NewTracker()
	SetObserver(tracker)

	defer SetObserver(nil)

	first := newLeakable(1, nil)
	second := newLeakable(2, nil)

	require.Equal(t, 2, tracker.LiveCount())
	require.Equal(t, uint64(2), tracker.Allocations())

	Release(first)
	assert.Equal(t, 1, tracker.LiveCount())
	assert.Equal(t, uint64(1), tracker.Releases())

	records := tracker.Live()
	require.Len(t, records, 1)
	assert.Same(t, second, records[0].Obj)
	assert.NotEmpty(t, records[0].Site.File)
	assert.Positive(t, records[0].Site.Line)

	Release(second)
	assert.Equal(t, 0, tracker.LiveCount())
}

func TestTrackerRemovesEntryBeforeFinalize(t *testing.T) {
	tracker := NewTracker()
	SetObserver(tracker)

	defer SetObserver(nil)

	var liveAtFinalize int

	obj := newLeakable(1, nil)
	obj.finalizer = func() { liveAtFinalize = tracker.LiveCount() }

	Release(obj)
	assert.Equal(t, 0, liveAtFinalize, "registry entry must be gone before the finalizer runs")
}

func TestUntrackedAllocationsAreFree(t *testing.T) {
	tracker := NewTracker()

	obj := newLeakable(1, nil)
	Release(obj)

	assert.Equal(t, 0, tracker.LiveCount())
	assert.Equal(t, uint64(0), tracker.Allocations())
}

func TestWriteReportEmpty(t *testing.T) {
	tracker := NewTracker()

	var buf bytes.Buffer

	leaked := tracker.WriteReport(&buf)
	assert.False(t, leaked)
	assert.Empty(t, buf.String())
}

func TestWriteReportLeaks(t *testing.T) {
	tracker := NewTracker()
	SetObserver(tracker)

	defer SetObserver(nil)

	obj := newLeakable(1, nil)
	Retain(obj)

	var buf bytes.Buffer

	leaked := tracker.WriteReport(&buf)
	require.True(t, leaked)

	out := buf.String()
	assert.Contains(t, out, "ALLOCATED AT")
	assert.Contains(t, out, "mem_test.go")
	assert.Contains(t, out, "Memory leak(s) detected")

	Release(obj)
	Release(obj)
}
