// Command stacktherm computes the temperature and the supply voltage of a
// 3D-stacked memory from a memory access trace.
package main

import (
	_ "github.com/KimMachineGun/automemlimit"
	"github.com/tebeka/atexit"
	_ "go.uber.org/automaxprocs"
)

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		atexit.Fatalf("stacktherm: %v", err)
	}

	atexit.Exit(0)
}
