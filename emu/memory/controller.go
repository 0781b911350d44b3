package memory

/*
 * z86 - Physical memory controller.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

import (
	"sort"

	"github.com/rcornwell/z86/emu/fault"
)

// PhysAddr is an address on the physical bus.
type PhysAddr uint64

// RegionMapping binds the half open window [Start, Start+Length) to a
// backing region.
type RegionMapping struct {
	Start  PhysAddr
	Length uint64
	Region Region
}

func (m *RegionMapping) contains(addr PhysAddr) bool {
	return m.Start <= addr && uint64(addr) < uint64(m.Start)+m.Length
}

// Controller maps physical address ranges to regions and dispatches bus
// accesses. The mapping list is kept sorted by start address and never
// overlaps.
type Controller struct {
	regions []RegionMapping
}

// NewController creates a controller with no mappings.
func NewController() *Controller {
	return &Controller{}
}

// Lock asserts the bus lock. The core is single threaded so this is a
// no-op, but LOCK-prefixed instructions and XCHG still go through it so
// a threaded bus can serialize later.
func (mc *Controller) Lock() {}

// Unlock releases the bus lock.
func (mc *Controller) Unlock() {}

// AddRegion maps region at start. Overlap with an existing mapping is
// fatal.
func (mc *Controller) AddRegion(start PhysAddr, region Region) {
	length := region.Size()
	for i := range mc.regions {
		r := &mc.regions[i]
		if uint64(start) < uint64(r.Start)+r.Length && uint64(r.Start) < uint64(start)+length {
			fault.Fatalf("mem", "overlapping regions: new [%#x,%#x) existing [%#x,%#x)",
				start, uint64(start)+length, r.Start, uint64(r.Start)+r.Length)
		}
	}

	mc.regions = append(mc.regions, RegionMapping{Start: start, Length: length, Region: region})
	sort.Slice(mc.regions, func(i, j int) bool {
		return mc.regions[i].Start < mc.regions[j].Start
	})
}

// Regions returns the current mappings, sorted by start.
func (mc *Controller) Regions() []RegionMapping {
	return mc.regions
}

// find locates the mapping containing addr. Linear search; the list is
// short.
func (mc *Controller) find(addr PhysAddr) *RegionMapping {
	for i := range mc.regions {
		if mc.regions[i].contains(addr) {
			return &mc.regions[i]
		}
	}
	fault.Fatalf("mem", "access to unmapped physical address %#x", addr)
	return nil
}

func (mc *Controller) Read8(addr PhysAddr) uint8 {
	r := mc.find(addr)
	return r.Region.Read8(uint64(addr - r.Start))
}

func (mc *Controller) Read16(addr PhysAddr) uint16 {
	r := mc.find(addr)
	return r.Region.Read16(uint64(addr - r.Start))
}

func (mc *Controller) Read32(addr PhysAddr) uint32 {
	r := mc.find(addr)
	return r.Region.Read32(uint64(addr - r.Start))
}

func (mc *Controller) Read64(addr PhysAddr) uint64 {
	r := mc.find(addr)
	return r.Region.Read64(uint64(addr - r.Start))
}

func (mc *Controller) Write8(addr PhysAddr, value uint8) {
	r := mc.find(addr)
	r.Region.Write8(uint64(addr-r.Start), value)
}

func (mc *Controller) Write16(addr PhysAddr, value uint16) {
	r := mc.find(addr)
	r.Region.Write16(uint64(addr-r.Start), value)
}

func (mc *Controller) Write32(addr PhysAddr, value uint32) {
	r := mc.find(addr)
	r.Region.Write32(uint64(addr-r.Start), value)
}

func (mc *Controller) Write64(addr PhysAddr, value uint64) {
	r := mc.find(addr)
	r.Region.Write64(uint64(addr-r.Start), value)
}

// Read copies len(buf) bytes starting at addr, walking mappings in
// order. Hitting a gap before the buffer is full is fatal.
func (mc *Controller) Read(addr PhysAddr, buf []uint8) {
	mc.bulk(addr, buf, false)
}

// Write copies buf into memory starting at addr, walking mappings in
// order. Hitting a gap before the buffer is drained is fatal.
func (mc *Controller) Write(addr PhysAddr, buf []uint8) {
	mc.bulk(addr, buf, true)
}

func (mc *Controller) bulk(addr PhysAddr, buf []uint8, store bool) {
	// Walking in mapping order is valid because the list is sorted.
	for len(buf) > 0 {
		r := mc.find(addr)
		offset := uint64(addr - r.Start)
		chunk := r.Length - offset
		if chunk > uint64(len(buf)) {
			chunk = uint64(len(buf))
		}
		if store {
			r.Region.Write(offset, buf[:chunk])
		} else {
			r.Region.Read(offset, buf[:chunk])
		}
		buf = buf[chunk:]
		addr += PhysAddr(chunk)
	}
}
