package batch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"carinfo/api/internal/catalog"
	"carinfo/api/internal/vision"
)

const okJSON = `{"make":"Volvo","model":"240","type":"Estate","year":"1988","color":"red","condition":"good","estimated_value":"25000","description":"boxy"}`

type step struct {
	text string
	err  error
}

// fakeEngine answers by image content; test images contain their own file
// name, so scripts are keyed by file name.
type fakeEngine struct {
	mu          sync.Mutex
	script      map[string][]step
	calls       map[string]int
	done        int
	inflight    int
	maxInflight int
	hold        time.Duration
}

func newFakeEngine(script map[string][]step) *fakeEngine {
	if script == nil {
		script = map[string][]step{}
	}
	return &fakeEngine{script: script, calls: map[string]int{}}
}

func (f *fakeEngine) Name() string     { return "fake" }
func (f *fakeEngine) GetModel() string { return "fake-1" }

func (f *fakeEngine) Complete(ctx context.Context, req vision.Request) (string, error) {
	name := string(req.Image)

	f.mu.Lock()
	f.inflight++
	if f.inflight > f.maxInflight {
		f.maxInflight = f.inflight
	}
	n := f.calls[name]
	f.calls[name]++
	steps := f.script[name]
	f.mu.Unlock()

	if f.hold > 0 {
		time.Sleep(f.hold)
	}

	f.mu.Lock()
	f.inflight--
	f.done++
	f.mu.Unlock()

	if n < len(steps) {
		return steps[n].text, steps[n].err
	}
	return okJSON, nil
}

func (f *fakeEngine) callsFor(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeEngine) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

type sleepRecorder struct {
	mu      sync.Mutex
	delays  []time.Duration
	onSleep func(d time.Duration)
}

func (s *sleepRecorder) Sleep(_ context.Context, d time.Duration) {
	if s.onSleep != nil {
		s.onSleep(d)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
}

func (s *sleepRecorder) count(d time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, x := range s.delays {
		if x == d {
			n++
		}
	}
	return n
}

func writeItems(t testing.TB, dir string, names ...string) []catalog.Item {
	t.Helper()
	items := make([]catalog.Item, 0, len(names))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
		items = append(items, catalog.NewItem(dir, name))
	}
	return items
}

func filenames(items []catalog.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Filename
	}
	return out
}
