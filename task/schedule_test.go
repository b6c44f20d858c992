package task

import (
	"math/rand"
	"testing"
	"time"
)

func entryAt(id int64, startMinute, minutes int) scheduleEntry {
	start := baseTime.Add(time.Duration(startMinute) * time.Minute)
	return scheduleEntry{id: id, kind: KindTask, start: start, end: start.Add(time.Duration(minutes) * time.Minute)}
}

func TestScheduleIndex_WouldOverlap(t *testing.T) {
	idx := newScheduleIndex()
	idx.insert(entryAt(1, 0, 30))
	idx.insert(entryAt(2, 60, 30))

	cases := []struct {
		name      string
		candidate scheduleEntry
		excluding int64
		want      bool
	}{
		{"abuts end", entryAt(0, 30, 30), 0, false},
		{"abuts start", entryAt(0, -30, 30), 0, false},
		{"fills gap", entryAt(0, 30, 30), 0, false},
		{"inside", entryAt(0, 10, 5), 0, true},
		{"covers both", entryAt(0, -10, 200), 0, true},
		{"tail overlap", entryAt(0, 50, 20), 0, true},
		{"excluded self", entryAt(0, 10, 10), 1, false},
		{"excluded self but hits other", entryAt(0, 10, 60), 1, true},
		{"after everything", entryAt(0, 90, 10), 0, false},
		{"ends where later starts", entryAt(0, 40, 20), 0, false},
		{"latest excluded, earlier hit", entryAt(0, 20, 50), 2, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, got := idx.wouldOverlap(tc.candidate.start, tc.candidate.end, tc.excluding)
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestScheduleIndex_ReplaceAndRemove(t *testing.T) {
	idx := newScheduleIndex()
	item := scheduledTask("x", StatusNew, 0, 30)
	item.ID = 7
	idx.replace(item, KindTask)

	item.StartTime = at(120)
	idx.replace(item, KindTask)
	if idx.len() != 1 {
		t.Fatalf("expected 1 entry after replace, got %d", idx.len())
	}
	if _, found := idx.wouldOverlap(*at(0), *at(30), 0); found {
		t.Fatalf("old window should be free after replace")
	}

	item.StartTime, item.Duration = nil, nil
	idx.replace(item, KindTask)
	if idx.len() != 0 {
		t.Fatalf("unscheduled items must leave the index")
	}
	idx.remove(7)
}

func TestScheduleIndex_OrderedTiesByID(t *testing.T) {
	idx := newScheduleIndex()
	idx.insert(entryAt(5, 10, 1))
	idx.insert(entryAt(3, 10, 1))
	idx.insert(entryAt(9, 0, 1))

	got := idx.ordered()
	want := []int64{9, 3, 5}
	for i, entry := range got {
		if entry.id != want[i] {
			t.Fatalf("position %d: expected %d, got %d", i, want[i], entry.id)
		}
	}
}

// The logarithmic query must agree with a full scan.
func TestScheduleIndex_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	idx := newScheduleIndex()
	var accepted []scheduleEntry

	for id := int64(1); id <= 400; id++ {
		candidate := entryAt(id, rng.Intn(5000), 1+rng.Intn(60))
		_, got := idx.wouldOverlap(candidate.start, candidate.end, 0)

		want := false
		for _, entry := range accepted {
			if candidate.start.Before(entry.end) && entry.start.Before(candidate.end) {
				want = true
				break
			}
		}
		if got != want {
			t.Fatalf("candidate %d: index says %v, scan says %v", id, got, want)
		}
		if !got {
			idx.insert(candidate)
			accepted = append(accepted, candidate)
		}
	}
}
