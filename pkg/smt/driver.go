// Copyright Quantrel Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package smt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/quantrel/go-quantrel/pkg/faults"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Result is a solver verdict.
type Result uint8

// Solver verdicts.
const (
	// Sat indicates a model was found.
	Sat Result = iota
	// Unsat indicates no model exists.
	Unsat
	// Unknown indicates the solver gave up.
	Unknown
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Driver owns one external solver process, its pipes and its SMT source
// buffer.  It is single-writer: one goroutine drives solve/block cycles.  A
// solver without incremental support is handed the full program as a
// temporary file on every solve; an incremental solver keeps a live session
// over stdin/stdout.
type Driver struct {
	spec    *Specification
	kind    SolverKind
	prof    profile
	binary  string
	timeout time.Duration
	// Whether this driver runs a live session.
	incremental bool

	proc   *exec.Cmd
	stdin  io.WriteCloser
	lines  chan string
	exited chan struct{}
	stderr *bytes.Buffer
	tmp    string

	// Blocking assertions accumulated by ElimSolution.
	ignore strings.Builder

	solved bool
	result Result
	model  *model
}

// NewDriver constructs a driver for the given specification.  The binary
// location resolves from the given path, then the solver's environment
// variable, then the working directory.  A zero timeout disables the
// deadline.
func NewDriver(spec *Specification, kind SolverKind, binary string, timeout time.Duration) *Driver {
	prof := kind.profile()
	d := &Driver{
		spec:        spec,
		kind:        kind,
		prof:        prof,
		binary:      binary,
		timeout:     timeout,
		incremental: spec.Incremental && prof.incremental,
	}

	if spec.Trivial {
		d.solved = true
		d.model = newModel()
		d.result = Unsat

		if spec.TrivialValue {
			d.result = Sat
		}
	}

	return d
}

// Solver returns the name of the solver this driver runs.
func (d *Driver) Solver() string { return d.prof.name }

// NumberOfVariables returns the number of function symbols declared for
// primary variables.
func (d *Driver) NumberOfVariables() int { return d.spec.NumVariables }

// NumberOfFunctionSymbols returns the total number of function symbols.
func (d *Driver) NumberOfFunctionSymbols() int { return d.spec.NumFunctionSymbols }

// NumberOfAssertions returns the number of assertions on the stack.
func (d *Driver) NumberOfAssertions() int { return d.spec.NumAssertions }

// Result returns the verdict of the most recent solve.
func (d *Driver) Result() Result { return d.result }

// resolveBinary locates the solver executable.
func (d *Driver) resolveBinary() string {
	if d.binary != "" {
		return d.binary
	}

	if path := os.Getenv(d.prof.envVar); path != "" {
		return path
	}

	return d.prof.fallback
}

// script assembles the full program for a one-shot solve.
func (d *Driver) script() string {
	return d.prof.header(d.spec.Logic) +
		d.spec.Body +
		d.ignore.String() +
		"(check-sat)\n(get-model)\n(echo \"finished\")\n"
}

// Solve runs the solver over the current assertion stack and returns its
// verdict, parsing the model on sat.
func (d *Driver) Solve() (result Result, err error) {
	defer faults.Recover(&err)

	if d.spec.Trivial {
		return d.result, nil
	}

	if d.incremental {
		d.solveIncremental()
	} else {
		d.solveOneShot()
	}

	d.solved = true

	return d.result, nil
}

// solveOneShot writes the program to a temporary file and runs the solver
// over it once.
func (d *Driver) solveOneShot() {
	if d.tmp != "" {
		_ = os.Remove(d.tmp)
	}

	file, err := os.CreateTemp("", "quantrel-*.smt2")
	if err != nil {
		panic(faults.NewSolver(faults.Unreachable, "cannot write temporary problem: %v", err))
	}

	d.tmp = file.Name()

	if _, err := file.WriteString(d.script()); err != nil {
		panic(faults.NewSolver(faults.Unreachable, "cannot write temporary problem: %v", err))
	}

	_ = file.Close()

	binary := d.resolveBinary()
	args := append(d.prof.command(false), d.tmp)

	log.Debugf("running %s %s", binary, strings.Join(args, " "))

	cmd := exec.Command(binary, args...)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	d.stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		panic(&faults.Solver{Kind: faults.Unreachable,
			Message: fmt.Sprintf("%s is not located at %s", d.prof.name, binary), Stderr: stderr.String()})
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-done:
		// Solvers exit non-zero on some benign conditions; trust stdout.
	case <-d.deadline(start):
		_ = cmd.Process.Kill()
		<-done

		panic(&faults.Cancellation{Kind: faults.Timeout})
	}

	d.readVerdict(bufio.NewReader(&stdout))
}

// deadline returns a channel firing when the configured timeout elapses, or
// nil for no deadline.
func (d *Driver) deadline(start time.Time) <-chan time.Time {
	if d.timeout <= 0 {
		return nil
	}

	remaining := d.timeout - time.Since(start)

	return time.After(remaining)
}

// solveIncremental drives the live session: feed the program once, then a
// (check-sat) per solve.
func (d *Driver) solveIncremental() {
	if d.proc == nil || d.proc.ProcessState != nil {
		d.start()
	}

	d.write("(check-sat)\n")

	start := time.Now()
	line := d.readLine(start)

	d.setResult(line)

	if d.result == Sat {
		d.write("(get-model)\n(echo \"finished\")\n")
		d.readModel(func() (string, bool) {
			l := d.readLine(start)
			return l, true
		})
	}
}

// start launches the solver process and feeds it the assertion stack,
// including any previously accumulated blocking assertions.
func (d *Driver) start() {
	binary := d.resolveBinary()
	args := d.prof.command(true)

	log.Debugf("starting %s %s", binary, strings.Join(args, " "))

	cmd := exec.Command(binary, args...)
	d.stderr = &bytes.Buffer{}
	cmd.Stderr = d.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		panic(faults.NewSolver(faults.Unreachable, "cannot open solver stdin: %v", err))
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		panic(faults.NewSolver(faults.Unreachable, "cannot open solver stdout: %v", err))
	}

	if err := cmd.Start(); err != nil {
		panic(&faults.Solver{Kind: faults.Unreachable,
			Message: fmt.Sprintf("%s is not located at %s", d.prof.name, binary), Stderr: d.stderr.String()})
	}

	d.proc = cmd
	d.stdin = stdin
	d.lines = make(chan string, 64)
	d.exited = make(chan struct{})

	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			d.lines <- scanner.Text()
		}

		close(d.lines)
		_ = cmd.Wait()
		close(d.exited)
	}()

	d.write(d.prof.header(d.spec.Logic))
	d.write(d.spec.Body)
	d.write(d.ignore.String())
}

func (d *Driver) write(s string) {
	if s == "" {
		return
	}

	if _, err := io.WriteString(d.stdin, s); err != nil {
		d.kill()
		panic(&faults.Solver{Kind: faults.UnexpectedExit,
			Message: "solver closed its input", Stderr: d.stderrText()})
	}
}

// readLine blocks for the next stdout line, killing the subprocess when the
// deadline elapses.
func (d *Driver) readLine(start time.Time) string {
	select {
	case line, ok := <-d.lines:
		if !ok {
			panic(&faults.Solver{Kind: faults.UnexpectedExit,
				Message: "solver exited mid-conversation", Stderr: d.stderrText()})
		}

		return line
	case <-d.deadline(start):
		d.kill()
		panic(&faults.Cancellation{Kind: faults.Timeout})
	}
}

// readVerdict consumes a one-shot solver's stdout: the verdict line followed
// by the model.
func (d *Driver) readVerdict(r *bufio.Reader) {
	scanner := bufio.NewScanner(r)

	var verdict string
	for scanner.Scan() {
		verdict = strings.TrimSpace(scanner.Text())
		if verdict != "" {
			break
		}
	}

	d.setResult(verdict)

	if d.result == Sat {
		d.readModel(func() (string, bool) {
			if !scanner.Scan() {
				return "", false
			}

			return scanner.Text(), true
		})
	}
}

// readModel gathers stdout lines up to the finished marker and parses them.
func (d *Driver) readModel(next func() (string, bool)) {
	var lines []string

	for {
		line, ok := next()
		if !ok || strings.Contains(line, "finished") {
			break
		}

		lines = append(lines, line)
	}

	m, err := parseModel(strings.Join(lines, "\n"))
	if err != nil {
		panic(err)
	}

	d.model = m
}

func (d *Driver) setResult(verdict string) {
	switch strings.TrimSpace(verdict) {
	case "sat":
		d.result = Sat
	case "unsat":
		d.result = Unsat
	case "unknown":
		d.result = Unknown
	default:
		panic(&faults.Solver{Kind: faults.Protocol,
			Message: fmt.Sprintf("unexpected solver verdict %q", verdict), Stderr: d.stderrText()})
	}
}

func (d *Driver) stderrText() string {
	if d.stderr == nil {
		return ""
	}

	return d.stderr.String()
}

// Contains reports whether the most recent model assigned the given label.
func (d *Driver) Contains(label int) bool {
	return d.model != nil && d.model.contains(label)
}

// Value returns the numeric value assigned to the given label.
func (d *Driver) Value(label int) (decimal.Decimal, error) {
	if err := d.checkModel(); err != nil {
		return decimal.Zero, err
	}

	if v, ok := d.model.nums[label]; ok {
		return v, nil
	}

	if v, ok := d.model.bools[label]; ok {
		if v {
			return decimal.NewFromInt(1), nil
		}

		return decimal.Zero, nil
	}

	return decimal.Zero, &faults.Lift{Kind: faults.MissingVariable,
		Message: fmt.Sprintf("no variable with label %d in the model", label)}
}

// BoolValue returns the boolean value assigned to the given label.
func (d *Driver) BoolValue(label int) (bool, error) {
	if err := d.checkModel(); err != nil {
		return false, err
	}

	if v, ok := d.model.bools[label]; ok {
		return v, nil
	}

	if v, ok := d.model.nums[label]; ok {
		return !v.IsZero(), nil
	}

	return false, &faults.Lift{Kind: faults.MissingVariable,
		Message: fmt.Sprintf("no variable with label %d in the model", label)}
}

func (d *Driver) checkModel() error {
	if !d.solved || d.result == Unsat || d.model == nil {
		return faults.NewSolver(faults.Protocol, "no model available; solve must succeed first")
	}

	return nil
}

// ElimSolution appends a blocking assertion excluding the current assignment
// of the given primary variables.  Fractional values reuse the solver's exact
// syntax.
func (d *Driver) ElimSolution(labels []int) error {
	if !d.solved {
		return faults.NewSolver(faults.Protocol, "no previous solution to eliminate")
	}

	if d.spec.Trivial {
		return nil
	}

	sorted := append([]int(nil), labels...)
	sort.Ints(sorted)

	var assignments []string

	for _, label := range sorted {
		fs, ok := d.spec.NumFS[label]
		if !ok || !d.model.contains(label) {
			continue
		}

		assignments = append(assignments, fmt.Sprintf("(= %s %s)", fs, d.blockValue(label)))
	}

	if len(assignments) == 0 {
		return nil
	}

	blocking := fmt.Sprintf("(assert (not (and %s)))\n", strings.Join(assignments, " "))
	d.ignore.WriteString(blocking)

	if d.incremental && d.stdin != nil {
		d.write(blocking)
	}

	return nil
}

// blockValue renders the model value of a label exactly as first reported.
func (d *Driver) blockValue(label int) string {
	if fraction, ok := d.model.fractions[label]; ok {
		return fraction
	}

	v, _ := d.Value(label)
	s := v.Abs().String()

	if d.spec.Logic == LogicFuzzy && !strings.Contains(s, ".") {
		s += ".0"
	}

	if v.Sign() < 0 {
		return fmt.Sprintf("(- %s)", s)
	}

	return s
}

// kill terminates the subprocess and releases its pipes.
func (d *Driver) kill() {
	if d.stdin != nil {
		_ = d.stdin.Close()
		d.stdin = nil
	}

	if d.proc != nil && d.proc.Process != nil {
		log.Debugf("killing %s (pid %d)", d.prof.name, d.proc.Process.Pid)
		_ = d.proc.Process.Kill()

		if d.exited != nil {
			<-d.exited
		}
	}

	d.proc = nil
	d.lines = nil
	d.exited = nil
}

// Reset discards the state of previous solving attempts, keeping the problem
// itself.
func (d *Driver) Reset() {
	d.kill()

	if !d.spec.Trivial {
		d.solved = false
		d.model = nil
	}
}

// Free releases every resource held by this driver: the subprocess, its
// pipes, and the temporary problem file.
func (d *Driver) Free() {
	d.kill()

	if d.tmp != "" {
		_ = os.Remove(d.tmp)
		d.tmp = ""
	}
}
