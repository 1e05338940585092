package adapters

import (
	"context"
	"io"
	"strings"
	"sync"

	"slide-narrator/application/ports/outbound"
)

func testLogger() outbound.LoggerPort {
	return NewZerologWrapper(io.Discard, nil)
}

type runCall struct {
	name string
	args []string
}

// fakeRunner records commands and answers by command name.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []runCall
	outputs map[string][]byte
	errs    map[string]error
	hook    func(name string, args []string)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, runCall{name: name, args: args})
	f.mu.Unlock()
	if f.hook != nil {
		f.hook(name, args)
	}
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	return f.outputs[name], nil
}

func (f *fakeRunner) lastCall() runCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func argAfter(args []string, flag string) string {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func joined(args []string) string {
	return strings.Join(args, " ")
}
