package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/zrho-lang/zrho/machine"
	"github.com/zrho-lang/zrho/vm"
)

func main() {
	var profileName string
	var profilePath string
	var maxSteps int
	var list bool
	var verbose bool

	flag.StringVar(&profileName, "m", "zr2", "Builtin machine to run on")
	flag.StringVar(&profilePath, "p", "", "Custom machine profile (.toml), overrides -m")
	flag.IntVar(&maxSteps, "n", 1000000, "Step budget")
	flag.BoolVar(&list, "l", false, "List the canonical program, do not execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("%v: expected exactly one program file", os.Args[0])
	}
	path := flag.Arg(0)
	if !vm.IsProgramSource(path) {
		log.Printf("%v: expected a %v or %v file", path, vm.EXTENSION, vm.EXTENSION_ASCII)
	}

	prof, ok := machine.ByName(profileName)
	if !ok {
		log.Fatalf("no machine '%v', have %v", profileName, machine.Names())
	}
	if len(profilePath) != 0 {
		pf, err := os.Open(profilePath)
		if err != nil {
			log.Fatalf("%v: %v", profilePath, err)
		}
		prof, err = machine.LoadProfile(pf)
		pf.Close()
		if err != nil {
			log.Fatalf("%v: %v", profilePath, err)
		}
	}

	inf, err := os.Open(path)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}
	defer inf.Close()

	parser := &vm.Parser{Verbose: verbose, Profile: prof}
	prog, errs := parser.Parse(inf)
	if len(errs) != 0 {
		for _, err := range errs {
			log.Printf("%v: %v", path, err)
		}
		os.Exit(1)
	}
	prog.Name = path

	if list {
		fmt.Print(prog.Source())
		return
	}

	computer := vm.NewComputer(prog, prof)
	computer.Verbose = verbose

	outcome, err := computer.Run(maxSteps)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	fmt.Printf("%v after %d ticks\n", outcome, computer.Ticks)
	for name, values := range computer.Registers() {
		if len(values) == 1 {
			fmt.Printf("%c: %d\n", name, values[0])
			continue
		}
		fmt.Printf("%c: %v\n", name, trimZeros(values))
	}
}

// trimZeros drops the all-zero tail of a storage array for display.
func trimZeros(values []int) []int {
	end := len(values)
	for end > 0 && values[end-1] == 0 {
		end -= 1
	}
	return values[:end]
}
