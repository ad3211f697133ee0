// seehuhn.de/go/pageview - a viewport for paginated documents
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pageview

// Pool holds retired slots for reuse, oldest first.
//
// Slots in the pool keep their page resources, so that a slot which is
// re-targeted to the page it showed before needs no reload.
type Pool struct {
	slots    []*Slot
	capacity int
}

// NewPool returns an empty pool.  If capacity is positive, the pool holds
// at most that many slots.
func NewPool(capacity int) *Pool {
	return &Pool{capacity: capacity}
}

// Put appends s to the pool.  If this exceeds the capacity, the oldest slot
// is removed from the pool and returned, so that the caller can destroy it.
func (p *Pool) Put(s *Slot) (overflow *Slot) {
	p.slots = append(p.slots, s)
	if p.capacity > 0 && len(p.slots) > p.capacity {
		overflow = p.slots[0]
		p.slots[0] = nil
		p.slots = p.slots[1:]
	}
	return overflow
}

// Get removes and returns the oldest slot, or nil if the pool is empty.
func (p *Pool) Get() *Slot {
	if len(p.slots) == 0 {
		return nil
	}
	s := p.slots[0]
	p.slots[0] = nil
	p.slots = p.slots[1:]
	return s
}

// Len returns the number of slots in the pool.
func (p *Pool) Len() int {
	return len(p.slots)
}

// Indices returns the page indices of the pooled slots, oldest first.
func (p *Pool) Indices() []int {
	res := make([]int, len(p.slots))
	for i, s := range p.slots {
		res[i] = s.index
	}
	return res
}

// Drain removes and returns all slots.
func (p *Pool) Drain() []*Slot {
	res := p.slots
	p.slots = nil
	return res
}
