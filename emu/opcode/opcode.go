package opcode

/*
 * z86 - Opcode identifiers.
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

// Op identifies an architectural instruction independent of its encoding.
// The executor dispatch table is indexed by these values.
type Op int

const (
	Invalid Op = iota

	// Arithmetic and logic.
	Add
	Adc
	Sub
	Sbb
	And
	Or
	Xor
	Cmp
	Test
	Inc
	Dec

	// Data movement and stack.
	Mov
	Xchg
	Push
	Pop

	// Control flow.
	Jmp
	Jo
	Jno
	Js
	Jns
	Jz
	Jnz
	Jb
	Jnb
	Ja
	Jna
	Jl
	Jge
	Jg
	Jle
	Jp
	Jnp
	Jcxz
	Call
	Ret
	Retf

	// Flag manipulation.
	Sti
	Cli
	Stc
	Clc
	Std
	Cld
	Cmc
	Lahf
	Sahf
	Pushf
	Popf

	// BCD adjusts.
	Aaa
	Aas
	Aam
	Aad
	Daa
	Das

	Nop
	Hlt

	Max // Table size, keep last
)

var names = map[Op]string{
	Add:   "add",
	Adc:   "adc",
	Sub:   "sub",
	Sbb:   "sbb",
	And:   "and",
	Or:    "or",
	Xor:   "xor",
	Cmp:   "cmp",
	Test:  "test",
	Inc:   "inc",
	Dec:   "dec",
	Mov:   "mov",
	Xchg:  "xchg",
	Push:  "push",
	Pop:   "pop",
	Jmp:   "jmp",
	Jo:    "jo",
	Jno:   "jno",
	Js:    "js",
	Jns:   "jns",
	Jz:    "jz",
	Jnz:   "jnz",
	Jb:    "jb",
	Jnb:   "jnb",
	Ja:    "ja",
	Jna:   "jna",
	Jl:    "jl",
	Jge:   "jge",
	Jg:    "jg",
	Jle:   "jle",
	Jp:    "jp",
	Jnp:   "jnp",
	Jcxz:  "jcxz",
	Call:  "call",
	Ret:   "ret",
	Retf:  "retf",
	Sti:   "sti",
	Cli:   "cli",
	Stc:   "stc",
	Clc:   "clc",
	Std:   "std",
	Cld:   "cld",
	Cmc:   "cmc",
	Lahf:  "lahf",
	Sahf:  "sahf",
	Pushf: "pushf",
	Popf:  "popf",
	Aaa:   "aaa",
	Aas:   "aas",
	Aam:   "aam",
	Aad:   "aad",
	Daa:   "daa",
	Das:   "das",
	Nop:   "nop",
	Hlt:   "hlt",
}

// Name returns the mnemonic for an opcode id.
func Name(o Op) string {
	if n, ok := names[o]; ok {
		return n
	}
	return "(bad)"
}
