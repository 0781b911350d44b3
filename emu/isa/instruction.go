package isa

/*
 * z86 - Decoded instruction and operand forms.
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
	op "github.com/rcornwell/z86/emu/opcode"
)

// OperandKind tags the operand union.
type OperandKind uint8

const (
	KindNone OperandKind = iota
	KindReg
	KindImm
	KindRel
	KindMem
	KindFar
)

// MemoryRef is a segmented memory reference: seg:[base + index*scale + disp].
// Seg is the explicit override; the resolver substitutes DS when absent.
// Bits is the access width of the operand.
type MemoryRef struct {
	Seg   Reg
	Base  Reg
	Index Reg
	Scale uint8
	Disp  int64
	Bits  uint8
}

// FarPointer is a seg:offset pair, either carried as an immediate
// (ptr16:16/ptr16:32) or loaded indirectly through a memory operand.
type FarPointer struct {
	IsMem  bool
	Mem    MemoryRef
	Seg    uint16
	Offset uint64
}

// Operand is a tagged union over the forms the decoder can produce.
type Operand struct {
	Kind    OperandKind
	Reg     Reg
	Imm     int64
	ImmBits uint8
	Rel     int64
	Mem     MemoryRef
	Far     FarPointer
}

func (o *Operand) IsRegister() bool       { return o.Kind == KindReg }
func (o *Operand) IsImmediate() bool      { return o.Kind == KindImm }
func (o *Operand) IsRelativeOffset() bool { return o.Kind == KindRel }
func (o *Operand) IsMemory() bool         { return o.Kind == KindMem }
func (o *Operand) IsFarPointer() bool     { return o.Kind == KindFar }

// RegOp wraps a register as an operand.
func RegOp(r Reg) Operand { return Operand{Kind: KindReg, Reg: r} }

// ImmOp wraps an immediate of the given width.
func ImmOp(v int64, bits int) Operand {
	return Operand{Kind: KindImm, Imm: v, ImmBits: uint8(bits)}
}

// RelOp wraps a signed relative branch offset.
func RelOp(ofs int64) Operand { return Operand{Kind: KindRel, Rel: ofs} }

// MemOp wraps a memory reference.
func MemOp(m MemoryRef) Operand { return Operand{Kind: KindMem, Mem: m} }

// FarOp wraps a far pointer.
func FarOp(f FarPointer) Operand { return Operand{Kind: KindFar, Far: f} }

// Modifiers are the prefix-derived instruction modifiers.
type Modifiers struct {
	OperandSizeOverride bool
	AddressSizeOverride bool
	Rex                 bool
	RexW                bool
	RexR                bool
	RexX                bool
	RexB                bool
	Lock                bool
	Rep                 bool
	Repnz               bool
}

// Instruction is one decoded instruction with up to four operands.
type Instruction struct {
	Opcode   op.Op
	Mnemonic string
	Mods     Modifiers
	Operands [4]Operand
	Count    int
	Length   int
}

func (i *Instruction) Dst() *Operand { return &i.Operands[0] }
func (i *Instruction) Src() *Operand { return &i.Operands[1] }
func (i *Instruction) Ext() *Operand { return &i.Operands[2] }
func (i *Instruction) Op4() *Operand { return &i.Operands[3] }

// AddOperand appends an operand. Adding a fifth is a decoder bug and
// panics.
func (i *Instruction) AddOperand(o Operand) {
	if i.Count >= len(i.Operands) {
		panic("too many operands")
	}
	i.Operands[i.Count] = o
	i.Count++
}
