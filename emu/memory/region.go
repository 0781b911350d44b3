package memory

/*
 * z86 - Byte addressable backing stores.
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
	"encoding/binary"

	"github.com/rcornwell/z86/emu/fault"
)

// Region is a byte addressable backing store. Storage is little endian.
// All accesses are bounds checked; an access past the end of the region
// is fatal.
type Region interface {
	Size() uint64
	Writable() bool

	Read8(offset uint64) uint8
	Read16(offset uint64) uint16
	Read32(offset uint64) uint32
	Read64(offset uint64) uint64
	Write8(offset uint64, value uint8)
	Write16(offset uint64, value uint16)
	Write32(offset uint64, value uint32)
	Write64(offset uint64, value uint64)

	Read(offset uint64, buf []uint8)
	Write(offset uint64, buf []uint8)
}

// HostRegion is a writable region backed by host memory.
type HostRegion struct {
	data []uint8
}

// NewHostRegion allocates a zeroed host backed region.
func NewHostRegion(size uint64) *HostRegion {
	return &HostRegion{data: make([]uint8, size)}
}

func (r *HostRegion) Size() uint64   { return uint64(len(r.data)) }
func (r *HostRegion) Writable() bool { return true }

// check verifies offset+width stays inside the region.
func (r *HostRegion) check(offset, width uint64) {
	if offset+width > uint64(len(r.data)) {
		fault.Fatalf("mem", "region access out of bounds: offset %#x width %d size %#x",
			offset, width, len(r.data))
	}
}

func (r *HostRegion) Read8(offset uint64) uint8 {
	r.check(offset, 1)
	return r.data[offset]
}

func (r *HostRegion) Read16(offset uint64) uint16 {
	r.check(offset, 2)
	return binary.LittleEndian.Uint16(r.data[offset:])
}

func (r *HostRegion) Read32(offset uint64) uint32 {
	r.check(offset, 4)
	return binary.LittleEndian.Uint32(r.data[offset:])
}

func (r *HostRegion) Read64(offset uint64) uint64 {
	r.check(offset, 8)
	return binary.LittleEndian.Uint64(r.data[offset:])
}

func (r *HostRegion) Write8(offset uint64, value uint8) {
	r.check(offset, 1)
	r.data[offset] = value
}

func (r *HostRegion) Write16(offset uint64, value uint16) {
	r.check(offset, 2)
	binary.LittleEndian.PutUint16(r.data[offset:], value)
}

func (r *HostRegion) Write32(offset uint64, value uint32) {
	r.check(offset, 4)
	binary.LittleEndian.PutUint32(r.data[offset:], value)
}

func (r *HostRegion) Write64(offset uint64, value uint64) {
	r.check(offset, 8)
	binary.LittleEndian.PutUint64(r.data[offset:], value)
}

func (r *HostRegion) Read(offset uint64, buf []uint8) {
	r.check(offset, uint64(len(buf)))
	copy(buf, r.data[offset:])
}

func (r *HostRegion) Write(offset uint64, buf []uint8) {
	r.check(offset, uint64(len(buf)))
	copy(r.data[offset:], buf)
}

// RomRegion is a read only region initialized from an image. Any store
// through the bus is fatal.
type RomRegion struct {
	HostRegion
}

// NewRomRegion builds a read only region holding image.
func NewRomRegion(image []uint8) *RomRegion {
	r := &RomRegion{}
	r.data = make([]uint8, len(image))
	copy(r.data, image)
	return r
}

func (r *RomRegion) Writable() bool { return false }

func (r *RomRegion) Write8(offset uint64, _ uint8)  { r.romWrite(offset) }
func (r *RomRegion) Write16(offset uint64, _ uint16) { r.romWrite(offset) }
func (r *RomRegion) Write32(offset uint64, _ uint32) { r.romWrite(offset) }
func (r *RomRegion) Write64(offset uint64, _ uint64) { r.romWrite(offset) }

func (r *RomRegion) Write(offset uint64, _ []uint8) { r.romWrite(offset) }

func (r *RomRegion) romWrite(offset uint64) {
	fault.Fatalf("mem", "write to read-only region at offset %#x", offset)
}
