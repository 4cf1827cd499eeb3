package index

import "sync/atomic"

// Holder owns the index currently served. Rebuilds construct a fresh Index
// and Swap it in; queries already running keep the Index they loaded.
type Holder struct {
	p atomic.Pointer[Index]
}

// NewHolder returns a Holder serving idx.
func NewHolder(idx *Index) *Holder {
	h := &Holder{}
	h.p.Store(idx)
	return h
}

// Current returns the index being served.
func (h *Holder) Current() *Index {
	return h.p.Load()
}

// Swap installs idx and returns the previous index.
func (h *Holder) Swap(idx *Index) *Index {
	return h.p.Swap(idx)
}
