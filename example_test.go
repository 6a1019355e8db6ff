package cachesim_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kolkov/cachesim"
	"github.com/kolkov/cachesim/internal/cachesim/config"
)

// Example demonstrates simulating a short trace and printing its
// report.
func Example() {
	dir, err := os.MkdirTemp("", "cachesim-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	tracePath := filepath.Join(dir, "trace.txt")
	trace := "0 R 0x0000\n0 R 0x0020\n0 R 0x0040\n"
	if err := os.WriteFile(tracePath, []byte(trace), 0o644); err != nil {
		panic(err)
	}

	result, err := cachesim.Run(context.Background(), tracePath, config.Default())
	if err != nil {
		panic(err)
	}

	fmt.Println(result.Procs[0].Bus.BusRd)

	// Output:
	// 3
}
