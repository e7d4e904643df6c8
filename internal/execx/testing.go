package execx

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records a single command invocation made against a Fake.
type Call struct {
	Name  string
	Args  []string
	Stdin string
}

// Cmdline returns the invocation as a single command line.
func (c Call) Cmdline() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// response is a canned reply for a faked command.
type response struct {
	output string
	err    error
}

// Fake is an in-memory Runner for tests. Commands respond with canned
// results registered by command line; unregistered commands succeed with
// empty output. All invocations are recorded.
//
// Fake follows the cmd-executor fake pattern used across this codebase's
// test suites and is safe for concurrent use.
type Fake struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string]response
	missing   map[string]bool
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{
		responses: make(map[string]response),
		missing:   make(map[string]bool),
	}
}

// On registers a canned response for the exact command line, e.g.
// "gpg --list-keys".
func (f *Fake) On(cmdline, output string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[cmdline] = response{output: output, err: err}
}

// MarkMissing makes LookPath fail for the named binary.
func (f *Fake) MarkMissing(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[name] = true
}

// Calls returns a copy of all recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Ran reports whether any recorded invocation matches the command line.
func (f *Fake) Ran(cmdline string) bool {
	for _, c := range f.Calls() {
		if c.Cmdline() == cmdline {
			return true
		}
	}
	return false
}

func (f *Fake) record(call Call) response {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.responses[call.Cmdline()]
}

// Run implements Runner.
func (f *Fake) Run(_ context.Context, name string, args ...string) error {
	resp := f.record(Call{Name: name, Args: args})
	return resp.err
}

// Output implements Runner.
func (f *Fake) Output(_ context.Context, name string, args ...string) (string, error) {
	resp := f.record(Call{Name: name, Args: args})
	return resp.output, resp.err
}

// Input implements Runner.
func (f *Fake) Input(_ context.Context, stdin, name string, args ...string) (string, error) {
	resp := f.record(Call{Name: name, Args: args, Stdin: stdin})
	return resp.output, resp.err
}

// LookPath implements Runner.
func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[name] {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	return "/usr/bin/" + name, nil
}
