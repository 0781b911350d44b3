package disassemble

/*
 * z86 - Disassembler, AT&T syntax.
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
	"fmt"
	"strings"

	"github.com/rcornwell/z86/emu/isa"
)

// Print formats one decoded instruction at ip. AT&T conventions:
// source before destination, % registers, $ immediates, branch targets
// resolved against the post-instruction address.
func Print(instr *isa.Instruction, ip uint64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%#04x:  ", ip)
	if instr.Mods.Lock {
		b.WriteString("lock ")
	}
	if instr.Mods.Rep {
		b.WriteString("rep ")
	}
	if instr.Mods.Repnz {
		b.WriteString("repnz ")
	}
	b.WriteString(instr.Mnemonic)

	// AT&T order reverses the operand list.
	for i := instr.Count - 1; i >= 0; i-- {
		if i == instr.Count-1 {
			b.WriteString(" ")
		} else {
			b.WriteString(", ")
		}
		printOperand(&b, instr, &instr.Operands[i], ip)
	}
	return b.String()
}

func printOperand(b *strings.Builder, instr *isa.Instruction, op *isa.Operand, ip uint64) {
	switch op.Kind {
	case isa.KindReg:
		b.WriteString("%" + op.Reg.String())

	case isa.KindImm:
		fmt.Fprintf(b, "$%#x", uint64(op.Imm)&widthMask(op.ImmBits))

	case isa.KindRel:
		fmt.Fprintf(b, "%#x", ip+uint64(instr.Length)+uint64(op.Rel))

	case isa.KindMem:
		printMemory(b, &op.Mem)

	case isa.KindFar:
		if op.Far.IsMem {
			b.WriteString("*")
			printMemory(b, &op.Far.Mem)
		} else {
			fmt.Fprintf(b, "$%#x, $%#x", op.Far.Seg, op.Far.Offset)
		}
	}
}

func printMemory(b *strings.Builder, mem *isa.MemoryRef) {
	if mem.Seg.Present() {
		b.WriteString("%" + mem.Seg.String() + ":")
	}
	if mem.Disp != 0 || (!mem.Base.Present() && !mem.Index.Present()) {
		fmt.Fprintf(b, "%#x", mem.Disp)
	}
	if !mem.Base.Present() && !mem.Index.Present() {
		return
	}

	b.WriteString("(")
	if mem.Base.Present() {
		b.WriteString("%" + mem.Base.String())
	}
	if mem.Index.Present() {
		fmt.Fprintf(b, ",%%%s,%d", mem.Index.String(), mem.Scale)
	}
	b.WriteString(")")
}

func widthMask(bits uint8) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}
