package task

import (
	"math"
	"time"

	"github.com/google/btree"
)

const scheduleDegree = 16

// scheduleEntry is the half-open window [start, end) of a scheduled item.
type scheduleEntry struct {
	id    int64
	kind  Kind
	start time.Time
	end   time.Time
}

func scheduleLess(a, b scheduleEntry) bool {
	if !a.start.Equal(b.start) {
		return a.start.Before(b.start)
	}
	return a.id < b.id
}

// scheduleIndex orders scheduled tasks and subtasks by start time. Entries
// never overlap, so their end times are ordered the same way as their starts.
type scheduleIndex struct {
	tree *btree.BTreeG[scheduleEntry]
	byID map[int64]scheduleEntry
}

func newScheduleIndex() *scheduleIndex {
	return &scheduleIndex{
		tree: btree.NewG(scheduleDegree, scheduleLess),
		byID: make(map[int64]scheduleEntry),
	}
}

func entryFor(t *Task, kind Kind) (scheduleEntry, bool) {
	end := t.EndTime()
	if end == nil {
		return scheduleEntry{}, false
	}
	return scheduleEntry{id: t.ID, kind: kind, start: *t.StartTime, end: *end}, true
}

// wouldOverlap reports the entry whose window intersects [start, end),
// ignoring the entry for excludingID. Windows that only touch do not overlap.
func (idx *scheduleIndex) wouldOverlap(start, end time.Time, excludingID int64) (scheduleEntry, bool) {
	var (
		conflict scheduleEntry
		found    bool
	)
	// The latest-starting entry that begins before end has the latest end
	// of all such entries, so it is the only one that needs checking. No
	// entry sorts below the pivot's id, so entries starting at end are skipped.
	pivot := scheduleEntry{start: end, id: math.MinInt64}
	idx.tree.DescendLessOrEqual(pivot, func(entry scheduleEntry) bool {
		if entry.id == excludingID {
			return true
		}
		if entry.end.After(start) {
			conflict, found = entry, true
		}
		return false
	})
	return conflict, found
}

func (idx *scheduleIndex) insert(entry scheduleEntry) {
	idx.tree.ReplaceOrInsert(entry)
	idx.byID[entry.id] = entry
}

func (idx *scheduleIndex) remove(id int64) {
	entry, ok := idx.byID[id]
	if !ok {
		return
	}
	idx.tree.Delete(entry)
	delete(idx.byID, id)
}

// replace drops any entry for t.ID and re-adds t if it is scheduled.
func (idx *scheduleIndex) replace(t *Task, kind Kind) {
	idx.remove(t.ID)
	if entry, ok := entryFor(t, kind); ok {
		idx.insert(entry)
	}
}

func (idx *scheduleIndex) ordered() []scheduleEntry {
	entries := make([]scheduleEntry, 0, idx.tree.Len())
	idx.tree.Ascend(func(entry scheduleEntry) bool {
		entries = append(entries, entry)
		return true
	})
	return entries
}

func (idx *scheduleIndex) len() int {
	return idx.tree.Len()
}
