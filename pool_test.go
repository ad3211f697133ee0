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

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPoolFIFO(t *testing.T) {
	p := NewPool(0)
	for i := range 5 {
		if old := p.Put(&Slot{index: i}); old != nil {
			t.Fatalf("unbounded pool returned slot %d", old.index)
		}
	}
	if d := cmp.Diff([]int{0, 1, 2, 3, 4}, p.Indices()); d != "" {
		t.Errorf("pool (-want +got):\n%s", d)
	}

	var got []int
	for s := p.Get(); s != nil; s = p.Get() {
		got = append(got, s.index)
	}
	if d := cmp.Diff([]int{0, 1, 2, 3, 4}, got); d != "" {
		t.Errorf("reuse order (-want +got):\n%s", d)
	}
	if p.Len() != 0 {
		t.Errorf("pool has %d slots left", p.Len())
	}
}

func TestPoolOverflow(t *testing.T) {
	p := NewPool(2)
	var evicted []int
	for i := range 5 {
		if old := p.Put(&Slot{index: i}); old != nil {
			evicted = append(evicted, old.index)
		}
	}
	if d := cmp.Diff([]int{0, 1, 2}, evicted); d != "" {
		t.Errorf("evicted (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]int{3, 4}, p.Indices()); d != "" {
		t.Errorf("pool (-want +got):\n%s", d)
	}

	all := p.Drain()
	if len(all) != 2 || p.Len() != 0 {
		t.Errorf("Drain returned %d slots, %d left", len(all), p.Len())
	}
}

// TestPoolOverflowReleases checks that slots dropped from a full pool
// release their page resources.
func TestPoolOverflowReleases(t *testing.T) {
	e := newFakeEngine(20)
	v, r := newTestViewport(t, e, WithPoolCapacity(1))
	pump(t, v, r)

	for _, i := range []int{10, 15} {
		v.SetCurrentIndex(i)
		pump(t, v, r)
	}
	// three live slots plus one pooled slot
	if got := e.openHandles(); got != 3+v.Pool().Len() {
		t.Errorf("%d open handles, want %d", got, 3+v.Pool().Len())
	}
	if v.Pool().Len() > 1 {
		t.Errorf("pool holds %d slots", v.Pool().Len())
	}
}

func TestDefaultPoolUnbounded(t *testing.T) {
	v := New(WithWorkers(1))
	defer v.Close()

	for i := range 50 {
		if old := v.pool.Put(&Slot{index: i}); old != nil {
			t.Fatalf("slot for page %d dropped from the pool", old.index)
		}
	}
	if v.Pool().Len() != 50 {
		t.Errorf("pool holds %d slots, want 50", v.Pool().Len())
	}
}

func TestRouterUnknownEvent(t *testing.T) {
	v := New(WithWorkers(1))
	defer v.Close()

	type other struct{ Event }
	if err := NewRouter(v).Handle(other{}); err == nil {
		t.Error("unknown event accepted")
	}
}
