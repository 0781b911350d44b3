package memory

/*
 * z86 - Memory layer test cases.
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
	"testing"

	"github.com/rcornwell/z86/emu/fault"
)

// expectFault runs fn and checks that it raises a fault in module.
func expectFault(t *testing.T, module string, fn func()) {
	t.Helper()
	defer func() {
		f := fault.Recover(recover())
		if f == nil {
			t.Errorf("expected a %s fault, got none", module)
			return
		}
		if f.Module != module {
			t.Errorf("fault module not correct got: %s expected: %s", f.Module, module)
		}
	}()
	fn()
}

// Check all width round trips on a writable region.
func TestHostRegionRoundTrip(t *testing.T) {
	r := NewHostRegion(0x1000)

	r.Write8(0x10, 0xAB)
	if v := r.Read8(0x10); v != 0xAB {
		t.Errorf("Read8 not correct got: %02x expected: %02x", v, 0xAB)
	}

	r.Write16(0x20, 0x1234)
	if v := r.Read16(0x20); v != 0x1234 {
		t.Errorf("Read16 not correct got: %04x expected: %04x", v, 0x1234)
	}

	r.Write32(0x30, 0xDEADBEEF)
	if v := r.Read32(0x30); v != 0xDEADBEEF {
		t.Errorf("Read32 not correct got: %08x expected: %08x", v, 0xDEADBEEF)
	}

	r.Write64(0x40, 0x0123456789ABCDEF)
	if v := r.Read64(0x40); v != 0x0123456789ABCDEF {
		t.Errorf("Read64 not correct got: %016x expected: %016x", v, uint64(0x0123456789ABCDEF))
	}
}

// Storage must be little endian.
func TestHostRegionEndian(t *testing.T) {
	r := NewHostRegion(0x100)
	r.Write32(0, 0x11223344)

	want := []uint8{0x44, 0x33, 0x22, 0x11}
	for i, w := range want {
		if v := r.Read8(uint64(i)); v != w {
			t.Errorf("byte %d not correct got: %02x expected: %02x", i, v, w)
		}
	}
}

// An access running past the end of a region is fatal.
func TestHostRegionBounds(t *testing.T) {
	r := NewHostRegion(0x10)

	expectFault(t, "mem", func() { r.Read16(0xF) })
	expectFault(t, "mem", func() { r.Write32(0xD, 0) })
	expectFault(t, "mem", func() { r.Read8(0x10) })
}

// A ROM region serves reads and rejects every store.
func TestRomRegion(t *testing.T) {
	r := NewRomRegion([]uint8{0x12, 0x34, 0x56, 0x78})

	if v := r.Read16(0); v != 0x3412 {
		t.Errorf("ROM Read16 not correct got: %04x expected: %04x", v, 0x3412)
	}
	if r.Writable() {
		t.Error("ROM region reports writable")
	}

	expectFault(t, "mem", func() { r.Write8(0, 0xFF) })
	expectFault(t, "mem", func() { r.Write(1, []uint8{0}) })
}

// Width round trips through the controller.
func TestControllerRoundTrip(t *testing.T) {
	mc := NewController()
	mc.AddRegion(0, NewHostRegion(0x10000))

	mc.Write8(0x100, 0x5A)
	if v := mc.Read8(0x100); v != 0x5A {
		t.Errorf("Read8 not correct got: %02x expected: %02x", v, 0x5A)
	}
	mc.Write16(0x200, 0xBEEF)
	if v := mc.Read16(0x200); v != 0xBEEF {
		t.Errorf("Read16 not correct got: %04x expected: %04x", v, 0xBEEF)
	}
	mc.Write32(0x300, 0xCAFEF00D)
	if v := mc.Read32(0x300); v != 0xCAFEF00D {
		t.Errorf("Read32 not correct got: %08x expected: %08x", v, 0xCAFEF00D)
	}
	mc.Write64(0x400, 0x1122334455667788)
	if v := mc.Read64(0x400); v != 0x1122334455667788 {
		t.Errorf("Read64 not correct got: %016x expected: %016x", v, uint64(0x1122334455667788))
	}
}

// Mappings stay sorted by start whatever the insertion order.
func TestControllerSorted(t *testing.T) {
	mc := NewController()
	mc.AddRegion(0x8000, NewHostRegion(0x1000))
	mc.AddRegion(0x0000, NewHostRegion(0x1000))
	mc.AddRegion(0x4000, NewHostRegion(0x1000))

	regions := mc.Regions()
	if len(regions) != 3 {
		t.Fatalf("region count not correct got: %d expected: %d", len(regions), 3)
	}
	for i := 1; i < len(regions); i++ {
		if regions[i-1].Start >= regions[i].Start {
			t.Errorf("regions not sorted at %d: %#x >= %#x", i, regions[i-1].Start, regions[i].Start)
		}
	}
}

// Adding an overlapping mapping is fatal.
func TestControllerOverlap(t *testing.T) {
	mc := NewController()
	mc.AddRegion(0x1000, NewHostRegion(0x1000))

	expectFault(t, "mem", func() { mc.AddRegion(0x1800, NewHostRegion(0x1000)) })
	expectFault(t, "mem", func() { mc.AddRegion(0x0800, NewHostRegion(0x1000)) })
	expectFault(t, "mem", func() { mc.AddRegion(0x1000, NewHostRegion(0x10)) })
}

// Access outside every mapping is fatal.
func TestControllerUnmapped(t *testing.T) {
	mc := NewController()
	mc.AddRegion(0, NewHostRegion(0x1000))

	expectFault(t, "mem", func() { mc.Read8(0x1000) })
	expectFault(t, "mem", func() { mc.Write16(0x2000, 0) })
}

// Bulk copies span adjacent regions.
func TestControllerSpanningCopy(t *testing.T) {
	mc := NewController()
	mc.AddRegion(0, NewHostRegion(0x100))
	mc.AddRegion(0x100, NewHostRegion(0x100))

	src := make([]uint8, 0x40)
	for i := range src {
		src[i] = uint8(i)
	}
	mc.Write(0xE0, src)

	dst := make([]uint8, 0x40)
	mc.Read(0xE0, dst)
	for i := range dst {
		if dst[i] != src[i] {
			t.Errorf("spanning copy byte %d not correct got: %02x expected: %02x", i, dst[i], src[i])
		}
	}

	// Second half must have landed in the second region.
	if v := mc.Read8(0x100); v != 0x20 {
		t.Errorf("second region byte not correct got: %02x expected: %02x", v, 0x20)
	}
}

// A bulk copy that runs into a gap is fatal.
func TestControllerSpanningGap(t *testing.T) {
	mc := NewController()
	mc.AddRegion(0, NewHostRegion(0x100))
	mc.AddRegion(0x200, NewHostRegion(0x100))

	buf := make([]uint8, 0x40)
	expectFault(t, "mem", func() { mc.Write(0xF0, buf) })
}
