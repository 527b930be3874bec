package dag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"surfgen/internal/core"
)

// execLog records Execute invocations across goroutines.
type execLog struct {
	mu    sync.Mutex
	names []string
}

func (l *execLog) record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
}

func (l *execLog) count(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, x := range l.names {
		if x == name {
			n++
		}
	}
	return n
}

func logged(log *execLog, name string, deps ...core.Task) *fakeTask {
	t := newFake(name, deps...)
	t.execute = func(ctx context.Context, store core.Store) (core.DocumentSet, error) {
		log.record(name)
		return core.DocumentSet{{Version: core.DocumentVersion}}, nil
	}
	return t
}

func TestRunExecutesChainLeavesFirst(t *testing.T) {
	log := &execLog{}
	leaf := logged(log, "leaf")
	mid := logged(log, "mid", leaf)
	root := logged(log, "root", mid)

	r := &Resolver{Store: core.NewMemoryStore()}
	report, err := r.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run() err=%v", err)
	}
	if report.Err() != nil {
		t.Fatalf("report.Err() = %v", report.Err())
	}
	if report.RunID == "" {
		t.Fatalf("report has no run id")
	}

	want := []string{"leaf", "mid", "root"}
	log.mu.Lock()
	got := append([]string(nil), log.names...)
	log.mu.Unlock()
	if len(got) != len(want) {
		t.Fatalf("executed %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("executed %v, want %v", got, want)
		}
	}

	for _, task := range []*fakeTask{leaf, mid, root} {
		res, ok := report.Result(task.Identity())
		if !ok {
			t.Fatalf("no result for %s", task.Identity())
		}
		if res.State != StateDone || res.FromCache {
			t.Fatalf("%s state=%s fromCache=%v, want done fresh", task.Identity(), res.State, res.FromCache)
		}
		if res.Documents != 1 {
			t.Fatalf("%s documents=%d, want 1", task.Identity(), res.Documents)
		}
	}
}

func TestRunTwiceSatisfiesEverythingFromCache(t *testing.T) {
	log := &execLog{}
	leaf := logged(log, "leaf")
	root := logged(log, "root", leaf)
	store := core.NewMemoryStore()

	r := &Resolver{Store: store}
	if _, err := r.Run(context.Background(), root); err != nil {
		t.Fatalf("first Run() err=%v", err)
	}

	report, err := r.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("second Run() err=%v", err)
	}
	for _, res := range report.Results {
		if res.State != StateDone || !res.FromCache {
			t.Fatalf("%s state=%s fromCache=%v, want cached", res.ID, res.State, res.FromCache)
		}
	}
	if n := log.count("leaf") + log.count("root"); n != 2 {
		t.Fatalf("Execute ran %d times across both runs, want 2", n)
	}
}

func TestRunIsolatesFailuresBetweenSubgraphs(t *testing.T) {
	log := &execLog{}
	boom := errors.New("boom")

	failing := newFake("failing")
	failing.execute = func(ctx context.Context, store core.Store) (core.DocumentSet, error) {
		return nil, boom
	}
	dependent := logged(log, "dependent", failing)
	independent := logged(log, "independent")

	store := core.NewMemoryStore()
	r := &Resolver{Store: store}
	report, err := r.Run(context.Background(), dependent, independent)
	if err != nil {
		t.Fatalf("Run() err=%v (task failures belong in the report)", err)
	}

	failRes, _ := report.Result(failing.Identity())
	if failRes.State != StateFailed {
		t.Fatalf("failing task state=%s, want failed", failRes.State)
	}
	if !errors.Is(failRes.Err, boom) {
		t.Fatalf("failing task cause=%v, want boom", failRes.Err)
	}

	depRes, _ := report.Result(dependent.Identity())
	if depRes.State != StateFailed {
		t.Fatalf("dependent state=%s, want failed", depRes.State)
	}
	if depRes.Err == nil || !strings.Contains(depRes.Err.Error(), "dependency") {
		t.Fatalf("dependent cause=%v, want dependency failure", depRes.Err)
	}
	if log.count("dependent") != 0 {
		t.Fatalf("dependent of a failed task was executed")
	}

	indRes, _ := report.Result(independent.Identity())
	if indRes.State != StateDone {
		t.Fatalf("independent state=%s, want done", indRes.State)
	}

	// The failure left no committed record, so a re-run retries it.
	exists, err := store.Exists(context.Background(), failing.Identity())
	if err != nil {
		t.Fatalf("Exists() err=%v", err)
	}
	if exists {
		t.Fatalf("failed task committed a record")
	}
	if report.Err() == nil {
		t.Fatalf("report.Err() = nil for a run with failures")
	}
}

func TestRunParallelExecutesEachIdentityOnce(t *testing.T) {
	log := &execLog{}
	shared := logged(log, "shared")
	var mids []core.Task
	for i := 0; i < 6; i++ {
		mids = append(mids, logged(log, fmt.Sprintf("mid-%d", i), shared))
	}
	root := logged(log, "root", mids...)

	r := &Resolver{Store: core.NewMemoryStore(), Workers: 4}
	report, err := r.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run() err=%v", err)
	}
	if report.Err() != nil {
		t.Fatalf("report.Err() = %v", report.Err())
	}

	if n := log.count("shared"); n != 1 {
		t.Fatalf("shared executed %d times, want 1", n)
	}
	for i := 0; i < 6; i++ {
		if n := log.count(fmt.Sprintf("mid-%d", i)); n != 1 {
			t.Fatalf("mid-%d executed %d times, want 1", i, n)
		}
	}
	for _, res := range report.Results {
		if res.State != StateDone {
			t.Fatalf("%s state=%s, want done", res.ID, res.State)
		}
	}
}

func TestRunRejectsCyclesBeforeExecuting(t *testing.T) {
	log := &execLog{}
	a := logged(log, "a")
	b := logged(log, "b")
	a.deps = []core.Task{b}
	b.deps = []core.Task{a}

	r := &Resolver{Store: core.NewMemoryStore()}
	_, err := r.Run(context.Background(), a)
	if !errors.Is(err, core.ErrCyclicDependency) {
		t.Fatalf("Run() err=%v, want ErrCyclicDependency", err)
	}
	if len(log.names) != 0 {
		t.Fatalf("tasks executed despite cycle: %v", log.names)
	}
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Resolver{Store: core.NewMemoryStore()}
	report, err := r.Run(ctx, newFake("a"))
	if err == nil {
		t.Fatalf("Run() succeeded with canceled context")
	}
	res, _ := report.Result(newFake("a").Identity())
	if res.State != StatePending {
		t.Fatalf("unscheduled task state=%s, want pending", res.State)
	}
}
