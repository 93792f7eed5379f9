package mem

import "sort"

// Record describes one live managed object held by a [Tracker].
type Record struct {
	Obj  Managed
	Site CallSite
}

// Tracker is the standard [Observer]: a live-allocation registry mapping
// object identity to the call site that allocated it. On top of the live set
// it keeps cumulative allocation and release counters.
//
// Tracking changes observability only, never allocation semantics. Install
// with [SetObserver] before the allocations of interest.
type Tracker struct {
	live      map[*Object]Record
	allocated uint64
	released  uint64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{live: map[*Object]Record{}}
}

// Allocated records obj as live, keyed by its header identity.
func (t *Tracker) Allocated(obj Managed, site CallSite) {
	t.live[obj.header()] = Record{Obj: obj, Site: site}
	t.allocated++
}

// Released removes obj from the live set. Called before the finalizer runs,
// so the registry never holds a finalized object.
func (t *Tracker) Released(obj Managed) {
	delete(t.live, obj.header())
	t.released++
}

// LiveCount reports the number of objects currently live.
func (t *Tracker) LiveCount() int {
	return len(t.live)
}

// Allocations reports the cumulative number of tracked allocations.
func (t *Tracker) Allocations() uint64 {
	return t.allocated
}

// Releases reports the cumulative number of final releases.
func (t *Tracker) Releases() uint64 {
	return t.released
}

// Live returns the live records ordered by allocation site, so that reports
// are deterministic.
func (t *Tracker) Live() []Record {
	records := make([]Record, 0, len(t.live))
	for _, rec := range t.live {
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Site.File != records[j].Site.File {
			return records[i].Site.File < records[j].Site.File
		}

		return records[i].Site.Line < records[j].Site.Line
	})

	return records
}
