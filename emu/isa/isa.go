package isa

/*
 * z86 - Architectural types shared by the decoder, executor and
 *       disassembler.
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

// Mode is the processor operating mode. It selects default operand and
// address widths and how segment selectors resolve.
type Mode int

const (
	Real Mode = iota
	Prot
	Long
)

func (m Mode) String() string {
	switch m {
	case Real:
		return "real"
	case Prot:
		return "protected"
	case Long:
		return "long"
	}
	return "invalid"
}

// SegIndex names one of the six segment registers. The order matches the
// segment register file.
type SegIndex uint8

const (
	CS SegIndex = iota
	DS
	ES
	FS
	GS
	SS
	NumSegs
)

var segNames = [NumSegs]string{"cs", "ds", "es", "fs", "gs", "ss"}

func (s SegIndex) String() string {
	if s < NumSegs {
		return segNames[s]
	}
	return "s?"
}

// General purpose register cell indices, in the canonical encoding order.
const (
	IdxA = iota
	IdxC
	IdxD
	IdxB
	IdxSP
	IdxBP
	IdxSI
	IdxDI
	IdxR8
	IdxR9
	IdxR10
	IdxR11
	IdxR12
	IdxR13
	IdxR14
	IdxR15
)

// RegClass tells which register file a Reg refers to.
type RegClass uint8

const (
	ClassNone RegClass = iota // Zero value, register not present
	ClassGPR                  // Low window of a 64-bit cell
	ClassHigh                 // AH/CH/DH/BH, high byte of cells 0..3
	ClassSeg                  // Segment selector
)

// Reg identifies an architectural register together with the width the
// instruction selected. The decoder fills these in; the register file
// dispatches on class, index and bits.
type Reg struct {
	Class RegClass
	Index uint8
	Bits  uint8
}

func (r Reg) Present() bool { return r.Class != ClassNone }

// Seg returns the segment register index; only meaningful for ClassSeg.
func (r Reg) Seg() SegIndex { return SegIndex(r.Index) }

var gprNames = [4][16]string{
	{"al", "cl", "dl", "bl", "spl", "bpl", "sil", "dil",
		"r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b"},
	{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di",
		"r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w"},
	{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi",
		"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d"},
	{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
		"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"},
}

var highNames = [4]string{"ah", "ch", "dh", "bh"}

func (r Reg) String() string {
	switch r.Class {
	case ClassHigh:
		return highNames[r.Index&0x3]
	case ClassSeg:
		return SegIndex(r.Index).String()
	case ClassGPR:
		switch r.Bits {
		case 8:
			return gprNames[0][r.Index&0xf]
		case 16:
			return gprNames[1][r.Index&0xf]
		case 32:
			return gprNames[2][r.Index&0xf]
		case 64:
			return gprNames[3][r.Index&0xf]
		}
	}
	return "r?"
}

// GPR builds a general purpose register reference of the given width.
func GPR(index int, bits int) Reg {
	return Reg{Class: ClassGPR, Index: uint8(index), Bits: uint8(bits)}
}

// High builds an AH/CH/DH/BH reference. Index must be 0..3.
func High(index int) Reg {
	return Reg{Class: ClassHigh, Index: uint8(index), Bits: 8}
}

// Segment builds a segment register reference.
func Segment(seg SegIndex) Reg {
	return Reg{Class: ClassSeg, Index: uint8(seg), Bits: 16}
}
