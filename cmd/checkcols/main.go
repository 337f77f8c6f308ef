// Command checkcols helps verify a state's column layout before extracting.
// It lints every configured state, then fetches one unit's table body and
// prints it with a pipe at each column's end offset so misaligned spans are
// visible at a glance.
//
// Usage:
//
//	go run ./cmd/checkcols -config configs -state US -source 0
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/adapter/archive"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/config"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/observability"
)

// phase tracks pass/fail for one lint phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	configPath := flag.String("config", "configs", "state config file or directory")
	state := flag.String("state", "", "state to fetch and print (default: first configured)")
	source := flag.Int("source", 0, "index of the state's source to print")
	timeout := flag.Duration("timeout", 30*time.Second, "fetch timeout")
	lintOnly := flag.Bool("lint-only", false, "lint the configuration without fetching")
	flag.Parse()

	if code := run(*configPath, *state, *source, *timeout, *lintOnly); code != 0 {
		os.Exit(code)
	}
}

func run(configPath, state string, source int, timeout time.Duration, lintOnly bool) int {
	states, err := config.LoadStates(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		return 1
	}

	fmt.Println("=== Column Layout Check ===")
	fmt.Println()

	phases := make([]*phase, 0, len(states))
	for _, st := range states {
		phases = append(phases, lintState(st))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if !allPassed {
		fmt.Println("\nLint FAILED.")
		return 1
	}
	if lintOnly {
		fmt.Println("\nLint passed.")
		return 0
	}

	st := states[0]
	if state != "" {
		st = findState(states, state)
		if st == nil {
			fmt.Fprintf(os.Stderr, "FATAL: state %q is not configured\n", state)
			return 1
		}
	}
	if source < 0 || source >= len(st.Sources) {
		fmt.Fprintf(os.Stderr, "FATAL: state %s has no source %d\n", st.State, source)
		return 1
	}
	src := st.Sources[source]

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := archive.NewClient(timeout, logger, observability.NewMetricsForTesting())
	lines, err := client.FetchLines(context.Background(), src.URL, src.FirstLine, src.LastLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: fetch: %v\n", err)
		return 1
	}

	fmt.Printf("\n%s source %d: %s (%d lines)\n\n", st.State, source, src.URL, len(lines))
	printWithBoundaries(os.Stdout, st, lines)
	return 0
}

func findState(states []*config.StateConfig, name string) *config.StateConfig {
	for _, st := range states {
		if st.State == name {
			return st
		}
	}
	return nil
}

// lintState reports layout problems the loader's validation accepts but that
// usually indicate a mis-typed offset: overlapping spans, spans out of order,
// and gaps wider than the table's typical padding.
func lintState(st *config.StateConfig) *phase {
	p := &phase{name: fmt.Sprintf("%s column layout", st.State)}

	cols := st.Columns
	for i := 1; i < len(cols); i++ {
		prev, cur := cols[i-1], cols[i]
		if cur.Start < prev.End {
			p.errorf("columns %s [%d,%d) and %s [%d,%d) overlap",
				prev.Name, prev.Start, prev.End, cur.Name, cur.Start, cur.End)
		}
		if cur.Start < prev.Start {
			p.errorf("column %s starts before %s; declare columns left to right", cur.Name, prev.Name)
		}
	}

	for _, sp := range st.Corrections.Spillover {
		seen := map[string]bool{}
		for _, code := range sp.Allowed {
			if seen[code] {
				p.errorf("spillover rule for %s lists code %q twice", sp.From, code)
			}
			seen[code] = true
		}
	}
	return p
}

// printWithBoundaries writes each line with a pipe inserted at every column's
// end offset, rightmost first so earlier offsets stay valid.
func printWithBoundaries(w io.Writer, st *config.StateConfig, lines []string) {
	ends := make([]int, 0, len(st.Columns))
	for _, col := range st.Columns {
		ends = append(ends, col.End)
	}

	for _, line := range lines {
		runes := []rune(line)
		for i := len(ends) - 1; i >= 0; i-- {
			end := ends[i]
			if end > len(runes) {
				continue
			}
			runes = append(runes[:end], append([]rune{'|'}, runes[end:]...)...)
		}
		fmt.Fprintln(w, string(runes))
	}
}
