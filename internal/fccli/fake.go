package fccli

import (
	"context"
	"strings"
	"sync"
)

// Call records one invocation made through a FakeRunner.
type Call struct {
	Name string
	Args []string
}

// FakeRunner is a Runner for tests. Responses are looked up by
// the space-joined argument list; Errors likewise.
type FakeRunner struct {
	mu        sync.Mutex
	Calls     []Call
	Responses map[string]string
	Errors    map[string]error
}

// Run records the call and returns the configured response.
func (f *FakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, Call{Name: name, Args: append([]string(nil), args...)})
	key := strings.Join(args, " ")
	if err, ok := f.Errors[key]; ok {
		return nil, err
	}
	return []byte(f.Responses[key]), nil
}
