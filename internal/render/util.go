package render

import (
	"fmt"
	"runtime"
	"strconv"
)

// defaultConcurrency sizes the browser page pool to the host's CPU
// count, matching cmd/gopdfsuit/main.go's own runtime.NumCPU()-derived
// reasoning for its HTTP concurrency limiter — here applied to a
// browser-bound workload instead of an in-process CPU-bound one.
func defaultConcurrency() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("render: expected positive integer, got %d", n)
	}
	return n, nil
}
