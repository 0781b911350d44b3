/*
 * z86 - Main process.
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

package main

import (
	"fmt"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	monitor "github.com/rcornwell/z86/command/monitor"
	cpu "github.com/rcornwell/z86/emu/cpu"
	"github.com/rcornwell/z86/emu/fault"
	mem "github.com/rcornwell/z86/emu/memory"
	logger "github.com/rcornwell/z86/util/logger"
)

// The program image loads at the conventional boot sector location;
// the ROM maps just under the top of the 32-bit physical space so the
// reset vector at 0xFFFFFFF0 lands inside it.
const (
	romBase     = 0xFFFF0000
	programBase = 0x7C00
)

func main() {
	optRom := getopt.StringLong("rom", 'r', "", "ROM image (mandatory)")
	optProgram := getopt.StringLong("program", 'p', "", "Program image (mandatory)")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optTrace := getopt.BoolLong("trace", 't', "Trace executed instructions")
	optMonitor := getopt.BoolLong("monitor", 'm', "Interactive monitor")
	optHelp := getopt.BoolLong("help", 'h', "Help")

	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "can't create log file:", err)
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	slog.SetDefault(slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel})))

	if *optRom == "" || *optProgram == "" {
		fmt.Fprintln(os.Stderr, "both --rom and --program are required")
		getopt.Usage()
		os.Exit(1)
	}

	rom, err := os.ReadFile(*optRom)
	if err != nil || len(rom) == 0 {
		slog.Error("invalid rom: " + *optRom)
		os.Exit(1)
	}

	program, err := os.ReadFile(*optProgram)
	if err != nil || len(program) == 0 {
		slog.Error("invalid program: " + *optProgram)
		os.Exit(1)
	}

	// Everything past here faults rather than returning errors; catch
	// the fault so the process exits with a diagnostic instead of a
	// stack trace.
	defer func() {
		if f := fault.Recover(recover()); f != nil {
			os.Exit(2)
		}
	}()

	c := cpu.New()
	c.SetTrace(*optTrace)
	c.Memory().AddRegion(romBase, mem.NewRomRegion(rom))
	c.Memory().Write(programBase, program)

	if *optMonitor {
		c.Reset()
		monitor.Console(c)
		return
	}
	c.Start()
}
