/*
 * z86 - Monitor commands.
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

package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rcornwell/z86/emu/cpu"
	"github.com/rcornwell/z86/emu/memory"
)

type cmd struct {
	name    string // Command name.
	min     int    // Minimum match size.
	process func([]string, *cpu.CPU) (bool, error)
}

var cmdList = []cmd{
	{name: "step", min: 1, process: step},
	{name: "continue", min: 1, process: cont},
	{name: "regs", min: 1, process: regs},
	{name: "mem", min: 1, process: mem},
	{name: "disasm", min: 1, process: disasm},
	{name: "reset", min: 2, process: reset},
	{name: "quit", min: 1, process: quit},
	{name: "help", min: 1, process: help},
}

// processCommand executes one command line. It returns true when the
// monitor should exit.
func processCommand(commandLine string, c *cpu.CPU) (bool, error) {
	words := strings.Fields(commandLine)
	if len(words) == 0 {
		return false, nil
	}

	match := matchList(words[0])
	if len(match) == 0 {
		return false, errors.New("command not found: " + words[0])
	}
	if len(match) > 1 {
		return false, errors.New("unique command not found: " + words[0])
	}
	return match[0].process(words[1:], c)
}

// completeCmd completes a command name during line editing.
func completeCmd(line string) []string {
	if strings.ContainsRune(line, ' ') {
		return nil
	}
	var out []string
	for _, c := range matchList(line) {
		out = append(out, c.name+" ")
	}
	return out
}

func matchList(word string) []cmd {
	var match []cmd
	for _, c := range cmdList {
		if len(word) < c.min || len(word) > len(c.name) {
			continue
		}
		if strings.HasPrefix(c.name, strings.ToLower(word)) {
			match = append(match, c)
		}
	}
	return match
}

// step executes one instruction, or a count of them.
func step(args []string, c *cpu.CPU) (bool, error) {
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return false, errors.New("invalid step count: " + args[0])
		}
		count = n
	}

	for i := 0; i < count; i++ {
		if !c.Step() {
			fmt.Println("CPU halted")
			break
		}
		fmt.Println(c.DisassembleNext())
	}
	return false, nil
}

// cont free runs until HLT.
func cont(_ []string, c *cpu.CPU) (bool, error) {
	for c.Step() {
	}
	fmt.Println("CPU halted")
	return false, nil
}

// regs dumps the register file.
func regs(_ []string, c *cpu.CPU) (bool, error) {
	fmt.Print(c.DumpRegisters())
	return false, nil
}

// mem dumps physical memory: mem <addr> [length].
func mem(args []string, c *cpu.CPU) (bool, error) {
	if len(args) < 1 {
		return false, errors.New("usage: mem <addr> [length]")
	}
	addr, err := strconv.ParseUint(args[0], 0, 64)
	if err != nil {
		return false, errors.New("invalid address: " + args[0])
	}

	length := uint64(64)
	if len(args) > 1 {
		length, err = strconv.ParseUint(args[1], 0, 64)
		if err != nil || length == 0 {
			return false, errors.New("invalid length: " + args[1])
		}
	}

	buf := make([]uint8, length)
	c.Memory().Read(memory.PhysAddr(addr), buf)

	for i := uint64(0); i < length; i += 16 {
		end := i + 16
		if end > length {
			end = length
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%08x: ", addr+i)
		for _, by := range buf[i:end] {
			fmt.Fprintf(&b, "%02x ", by)
		}
		fmt.Println(b.String())
	}
	return false, nil
}

// disasm prints the next instruction without executing it.
func disasm(_ []string, c *cpu.CPU) (bool, error) {
	fmt.Println(c.DisassembleNext())
	return false, nil
}

// reset returns the CPU to the power-on state.
func reset(_ []string, c *cpu.CPU) (bool, error) {
	c.Reset()
	return false, nil
}

func quit(_ []string, _ *cpu.CPU) (bool, error) {
	return true, nil
}

func help(_ []string, _ *cpu.CPU) (bool, error) {
	fmt.Println("step [n]          execute n instructions")
	fmt.Println("continue          run until HLT")
	fmt.Println("regs              dump registers")
	fmt.Println("mem <addr> [len]  dump physical memory")
	fmt.Println("disasm            show the next instruction")
	fmt.Println("reset             reset the CPU")
	fmt.Println("quit              leave the monitor")
	return false, nil
}
