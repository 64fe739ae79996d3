package dedup

// HistorySet is the set of posting ids already persisted by earlier runs.
// It is built once per run and only read afterwards.
type HistorySet struct {
	ids map[int64]struct{}
}

// NewHistorySet builds a set from ids.
func NewHistorySet(ids ...int64) HistorySet {
	set := HistorySet{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is already known. The zero HistorySet is empty.
func (h HistorySet) Contains(id int64) bool {
	_, exists := h.ids[id]
	return exists
}

func (h HistorySet) Len() int {
	return len(h.ids)
}

// Union returns a new set holding the ids of h and every other set.
func (h HistorySet) Union(others ...HistorySet) HistorySet {
	out := NewHistorySet()
	for id := range h.ids {
		out.ids[id] = struct{}{}
	}
	for _, o := range others {
		for id := range o.ids {
			out.ids[id] = struct{}{}
		}
	}
	return out
}
