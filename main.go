package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/devnes/nesgo/display"
	"github.com/devnes/nesgo/nes"

	"github.com/faiface/pixel/pixelgl"
)

var (
	flagDebug   bool
	flagLogging bool
)

func main() {
	parseFlags()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: nesgo [-d] [-l] <rom path>")
		os.Exit(1)
	}
	romPath := flag.Arg(0)

	cart, err := nes.NewCartridge(romPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}

	bus := nes.NewBus()
	bus.InsertCartridge(cart)

	if flagLogging {
		logFile, err := os.Create("cpu.log")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer logFile.Close()
		bus.Cpu.SetLogger(logFile)
	}

	bus.Reset()

	if flagDebug {
		disassembleStart := time.Now()
		lines := bus.Cpu.Disassemble(0x8000, 0xFFFF)
		for addr, line := range lines {
			fmt.Printf("%04X %s\n", addr, line)
		}
		nes.TimeTrack(disassembleStart)

		for i := 0; i < 2; i++ {
			if err := writePatternTablePPM(bus.Ppu, i); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
	}

	pixelgl.Run(func() {
		display.New(bus).Run()
	})

	os.Exit(0)
}

func parseFlags() {
	flag.BoolVar(&flagDebug, "d", false, "print a disassembly of the loaded cartridge before running")
	flag.BoolVar(&flagLogging, "l", false, "write a per-instruction CPU trace to cpu.log")

	flag.Parse()
}

// writePatternTablePPM dumps one of the cartridge's two 4 KiB CHR pattern
// tables, decoded against palette 0, to a PPM image for offline inspection.
func writePatternTablePPM(ppu *nes.Ppu, table int) error {
	f, err := os.Create(fmt.Sprintf("patterntable%d.ppm", table))
	if err != nil {
		return err
	}
	defer f.Close()

	grid := ppu.PatternTable(table, 0)

	fmt.Fprintf(f, "P3\n%d %d\n255\n", len(grid[0]), len(grid))
	for _, row := range grid {
		for _, c := range row {
			fmt.Fprintf(f, "%d %d %d ", c.R, c.G, c.B)
		}
		fmt.Fprintln(f)
	}
	return nil
}

// exitCodeFor maps a cartridge load failure to the process exit code: 2 for
// an unsupported mapper, 1 for anything else (bad header, short file, I/O
// error).
func exitCodeFor(err error) int {
	type kinded interface {
		Unwrap() error
	}

	for {
		if romErr, ok := err.(*nes.RomError); ok {
			if romErr.Kind == nes.UnsupportedMapper {
				return 2
			}
			return 1
		}
		u, ok := err.(kinded)
		if !ok {
			return 1
		}
		err = u.Unwrap()
	}
}
