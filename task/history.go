package task

import (
	"container/list"
	"fmt"
)

// history keeps snapshots of accessed entities, most recent last. Each id
// appears at most once.
type history struct {
	order *list.List
	byID  map[int64]*list.Element
	limit int
}

func newHistory(limit int) *history {
	if limit < 0 {
		limit = 0
	}
	return &history{
		order: list.New(),
		byID:  make(map[int64]*list.Element),
		limit: limit,
	}
}

// add records a snapshot of entity, moving any earlier entry for the same id
// to the end.
func (h *history) add(entity Entity) error {
	id := entity.EntityID()
	if id == 0 {
		return fmt.Errorf("record history: %w", ErrMissingID)
	}
	h.remove(id)
	h.byID[id] = h.order.PushBack(entity.snapshot())
	if h.limit > 0 && h.order.Len() > h.limit {
		oldest := h.order.Front()
		h.remove(oldest.Value.(Entity).EntityID())
	}
	return nil
}

func (h *history) remove(id int64) {
	elem, ok := h.byID[id]
	if !ok {
		return
	}
	h.order.Remove(elem)
	delete(h.byID, id)
}

// list returns fresh copies of the recorded snapshots.
func (h *history) list() []Entity {
	entries := make([]Entity, 0, h.order.Len())
	for elem := h.order.Front(); elem != nil; elem = elem.Next() {
		entries = append(entries, elem.Value.(Entity).snapshot())
	}
	return entries
}
