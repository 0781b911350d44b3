package decoder

/*
 * z86 - Table driven byte stream decoder.
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
	"github.com/rcornwell/z86/emu/fault"
	"github.com/rcornwell/z86/emu/isa"
	op "github.com/rcornwell/z86/emu/opcode"
)

// ByteSource is a stateful cursor over the instruction stream. The CPU
// backs it with reads through CS:IP; tests back it with a byte slice.
type ByteSource interface {
	Peek() uint8
	Pop() uint8
	Match(b uint8) bool
	Position() int
}

// decodeState carries one instruction's worth of decode context.
type decodeState struct {
	src  ByteSource
	mode isa.Mode
	mods isa.Modifiers
	seg  isa.Reg // Segment override prefix, if any
}

// Decode reads one instruction from src. A byte sequence that does not
// decode is fatal.
func Decode(src ByteSource, mode isa.Mode) *isa.Instruction {
	d := &decodeState{src: src, mode: mode}
	d.prefixes()

	instr := d.opcodeByte(d.src.Pop())
	instr.Mods = d.mods
	instr.Length = src.Position()
	instr.Mnemonic = op.Name(instr.Opcode)
	return instr
}

// prefixes consumes legacy prefixes and, in long mode, a REX prefix.
func (d *decodeState) prefixes() {
	for {
		switch d.src.Peek() {
		case 0x66:
			d.mods.OperandSizeOverride = true
		case 0x67:
			d.mods.AddressSizeOverride = true
		case 0xF0:
			d.mods.Lock = true
		case 0xF2:
			d.mods.Repnz = true
		case 0xF3:
			d.mods.Rep = true
		case 0x26:
			d.seg = isa.Segment(isa.ES)
		case 0x2E:
			d.seg = isa.Segment(isa.CS)
		case 0x36:
			d.seg = isa.Segment(isa.SS)
		case 0x3E:
			d.seg = isa.Segment(isa.DS)
		case 0x64:
			d.seg = isa.Segment(isa.FS)
		case 0x65:
			d.seg = isa.Segment(isa.GS)
		default:
			b := d.src.Peek()
			if d.mode == isa.Long && b&0xF0 == 0x40 {
				d.mods.Rex = true
				d.mods.RexW = b&0x8 != 0
				d.mods.RexR = b&0x4 != 0
				d.mods.RexX = b&0x2 != 0
				d.mods.RexB = b&0x1 != 0
				d.src.Pop()
				continue
			}
			return
		}
		d.src.Pop()
	}
}

// operandSize applies the mode/override/REX.W sizing rule. Stack and
// near branch opcodes pass def64 for the 64-bit default in long mode.
func (d *decodeState) operandSize(def64 bool) int {
	if d.mode == isa.Real {
		if d.mods.OperandSizeOverride {
			return 32
		}
		return 16
	}
	if d.mods.OperandSizeOverride {
		return 16
	}
	if d.mods.RexW || (d.mode == isa.Long && def64) {
		return 64
	}
	return 32
}

// addressSize applies the address sizing rule.
func (d *decodeState) addressSize() int {
	switch d.mode {
	case isa.Real:
		if d.mods.AddressSizeOverride {
			return 32
		}
		return 16
	case isa.Prot:
		if d.mods.AddressSizeOverride {
			return 16
		}
		return 32
	default:
		if d.mods.AddressSizeOverride {
			return 32
		}
		return 64
	}
}

// immZBits is the immediate width for "z" encodings: 16-bit operands
// take a 16-bit immediate, larger operands a 32-bit one.
func immZBits(opsize int) int {
	if opsize == 16 {
		return 16
	}
	return 32
}

// readImm reads a little endian immediate of the given width.
func (d *decodeState) readImm(bits int) int64 {
	var v uint64
	for i := 0; i < bits/8; i++ {
		v |= uint64(d.src.Pop()) << (8 * i)
	}
	// Sign extend from the top bit of the immediate.
	shift := 64 - uint(bits)
	return int64(v<<shift) >> shift
}

// gpr builds a register reference honoring the high byte forms: without
// REX, 8-bit indices 4..7 select AH/CH/DH/BH.
func (d *decodeState) gpr(index int, bits int) isa.Reg {
	if bits == 8 && !d.mods.Rex && index >= 4 && index < 8 {
		return isa.High(index - 4)
	}
	return isa.GPR(index, bits)
}

// The 8C/8E segment register encoding order.
var sregEncoding = [6]isa.SegIndex{isa.ES, isa.CS, isa.SS, isa.DS, isa.FS, isa.GS}

func (d *decodeState) sreg(index uint8) isa.Reg {
	if int(index) >= len(sregEncoding) {
		fault.Fatalf("decode", "invalid segment register field %d", index)
	}
	return isa.Segment(sregEncoding[index])
}

func (d *decodeState) invalid(b uint8) *isa.Instruction {
	fault.Fatalf("decode", "cannot decode opcode byte %#02x", b)
	return nil
}
