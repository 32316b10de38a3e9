package main

import (
	"bytes"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"time"

	"chess-tuner/linalg"
)

var (
	size    = flag.Int("n", 400, "Order of the random SPD system")
	reps    = flag.Int("reps", 3, "Repetitions per measurement; the fastest is reported")
	goBench = flag.Bool("gotest", false, "Also run the go test benchmarks in ./bench and ./linalg")
)

var threadCounts = []int{1, 2, 4, 8}

// run executes a command and prints its combined output. Returns exit code.
func run(name string, args ...string) int {
	cmd := exec.Command(name, args...)
	cmd.Env = os.Environ()
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	fmt.Print(out.String())
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode()
	}
	fmt.Fprintf(os.Stderr, "error running %s: %v\n", name, err)
	return 1
}

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// best times f reps times and returns the fastest run.
func best(f func() error) time.Duration {
	var fastest time.Duration
	for i := 0; i < max(*reps, 1); i++ {
		t0 := time.Now()
		check(f())
		if d := time.Since(t0); i == 0 || d < fastest {
			fastest = d
		}
	}
	return fastest
}

func main() {
	flag.Parse()
	n := *size
	rng := rand.New(rand.NewSource(1))

	x, err := linalg.New(2*n, n)
	check(err)
	for i := 0; i < x.Rows(); i++ {
		row := x.Row(i)
		for j := range row {
			row[j] = rng.NormFloat64()
		}
	}
	spd, err := linalg.Gram(x)
	check(err)
	check(linalg.RegularizeInPlace(spd, float64(n)))
	b, err := linalg.New(n, 1)
	check(err)
	for i := 0; i < n; i++ {
		b.Set(i, 0, rng.NormFloat64())
	}

	refL, err := linalg.Cholesky(spd)
	check(err)
	refW, err := linalg.SolveCholesky(spd, b)
	check(err)

	fmt.Printf("Random SPD system n=%d (design %dx%d), best of %d\n", n, 2*n, n, *reps)
	fmt.Println("OP \t\t\tThreads \tTime \t\tMaxDiff")

	fmt.Printf("gram \t\t\t%d \t\t%v\n", 1, best(func() error { _, err := linalg.Gram(x); return err }))
	for _, t := range threadCounts[1:] {
		t := t
		fmt.Printf("gram \t\t\t%d \t\t%v\n", t, best(func() error { _, err := linalg.GramThreaded(x, t); return err }))
	}

	inPlace := func(name string, f func(*linalg.Matrix) error, threads int) {
		var l *linalg.Matrix
		d := best(func() error {
			l = spd.Copy()
			return f(l)
		})
		diff, err := linalg.MaxAbsDiff(refL, l)
		check(err)
		fmt.Printf("%-16s \t%d \t\t%v \t%.2e\n", name, threads, d, diff)
	}
	fmt.Printf("%-16s \t%d \t\t%v \t%.2e\n", "cholesky", 1, best(func() error { _, err := linalg.Cholesky(spd); return err }), 0.0)
	inPlace("cholesky-inplace", linalg.CholeskyInPlace, 1)
	inPlace("cholesky-outer", linalg.CholeskyOuterInPlace, 1)
	for _, t := range threadCounts[1:] {
		t := t
		inPlace("cholesky-outer-mt", func(m *linalg.Matrix) error {
			return linalg.CholeskyOuterInPlaceThreaded(m, t)
		}, t)
	}

	for _, t := range threadCounts {
		t := t
		var w *linalg.Matrix
		d := best(func() error {
			var err error
			w, err = linalg.SolveCholeskyThreaded(spd, b, t)
			return err
		})
		diff, err := linalg.MaxAbsDiff(refW, w)
		check(err)
		fmt.Printf("%-16s \t%d \t\t%v \t%.2e\n", "solve", t, d, diff)
	}

	if !*goBench {
		return
	}
	// Format: BenchmarkName  Iterations  ns/op  B/op  allocs/op
	fmt.Println("\nColumns: BENCHMARK  N  ns/op  B/op  allocs/op")
	for _, pkg := range []string{"./bench", "./linalg"} {
		if code := run("go", "test", pkg, "-run", "^$", "-bench", ".", "-benchmem", "-benchtime=1s"); code != 0 {
			os.Exit(code)
		}
	}
}
