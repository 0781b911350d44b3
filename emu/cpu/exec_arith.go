package cpu

/*
 * z86 - Arithmetic and logic instructions.
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
	"github.com/rcornwell/z86/emu/isa"
	op "github.com/rcornwell/z86/emu/opcode"
)

// opArith handles the two-operand ALU block. CMP and TEST compute
// flags without writing the result back.
func (cpu *CPU) opArith(instr *isa.Instruction) {
	a := cpu.getOperand(&instr.Mods, instr.Dst())
	b := cpu.getOperand(&instr.Mods, instr.Src())

	var ret value
	writeback := true

	switch instr.Opcode {
	case op.Add:
		ret = cpu.add(a, b, 0)
	case op.Adc:
		ret = cpu.add(a, b, carry(cpu.flags.CF()))
	case op.Sub:
		ret = cpu.sub(a, b, 0)
	case op.Sbb:
		ret = cpu.sub(a, b, carry(cpu.flags.CF()))
	case op.And:
		ret = cpu.logical(newValue(int(a.bits), a.v&b.v))
	case op.Or:
		ret = cpu.logical(newValue(int(a.bits), a.v|b.v))
	case op.Xor:
		ret = cpu.logical(newValue(int(a.bits), a.v^b.v))
	case op.Cmp:
		ret = cpu.sub(a, b, 0)
		writeback = false
	case op.Test:
		ret = cpu.logical(newValue(int(a.bits), a.v&b.v))
		writeback = false
	}

	if writeback {
		cpu.setOperand(&instr.Mods, instr.Dst(), ret)
	}
}

// opIncDec adds or subtracts one, leaving CF untouched.
func (cpu *CPU) opIncDec(instr *isa.Instruction) {
	a := cpu.getOperand(&instr.Mods, instr.Dst())
	one := newValue(int(a.bits), 1)

	cf := cpu.flags.CF()
	var ret value
	if instr.Opcode == op.Inc {
		ret = cpu.add(a, one, 0)
	} else {
		ret = cpu.sub(a, one, 0)
	}
	cpu.flags.SetCF(cf)

	cpu.setOperand(&instr.Mods, instr.Dst(), ret)
}

func carry(cf bool) uint64 {
	if cf {
		return 1
	}
	return 0
}

// add computes a + b + cin at the operand width and sets OF, SF, ZF,
// AF, PF and CF from the architectural definitions.
func (cpu *CPU) add(a, b value, cin uint64) value {
	au, bu := a.get(), b.get()
	ret := newValue(int(a.bits), au+bu+cin)
	r := ret.get()

	// Carry out of the top bit of the width.
	var cf bool
	if a.bits == 64 {
		cf = r < au || (cin == 1 && r == au)
	} else {
		cf = (au+bu+cin)>>a.bits != 0
	}

	cpu.flags.SetCF(cf)
	cpu.flags.SetOF((^(au ^ bu) & (au ^ r) & a.signBit()) != 0)
	cpu.flags.SetAF((au&0xF)+(bu&0xF)+cin > 0xF)
	cpu.setResultFlags(ret)
	return ret
}

// sub computes a - b - bin at the operand width with the borrow forms
// of CF, OF and AF.
func (cpu *CPU) sub(a, b value, bin uint64) value {
	au, bu := a.get(), b.get()
	ret := newValue(int(a.bits), au-bu-bin)
	r := ret.get()

	cpu.flags.SetCF(au < bu || (bin == 1 && au == bu))
	cpu.flags.SetOF(((au ^ bu) & (au ^ r) & a.signBit()) != 0)
	cpu.flags.SetAF(au&0xF < (bu&0xF)+bin)
	cpu.setResultFlags(ret)
	return ret
}

// logical sets the flag pattern of the bitwise ops: CF, OF and AF
// cleared, PF/ZF/SF from the result.
func (cpu *CPU) logical(ret value) value {
	cpu.flags.SetCF(false)
	cpu.flags.SetOF(false)
	cpu.flags.SetAF(false)
	cpu.setResultFlags(ret)
	return ret
}

// setResultFlags sets PF, ZF and SF from a result value.
func (cpu *CPU) setResultFlags(ret value) {
	cpu.flags.SetPF(ret.parity())
	cpu.flags.SetZF(ret.zero())
	cpu.flags.SetSF(ret.sign())
}
