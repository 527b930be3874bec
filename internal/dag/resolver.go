package dag

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"surfgen/internal/core"
	"surfgen/internal/telemetry"
)

// Resolver drives one or more root tasks to completion against a store.
//
// For each node in dependency order: a task with a committed record is
// marked done without running; otherwise it runs once all dependencies are
// done, and its documents are committed before it is marked done. A failure
// marks the task and all transitive dependents failed; independent subgraphs
// continue to completion.
//
// Workers <= 1 gives a sequential walk. Larger values dispatch independent
// ready tasks to a worker pool; the store's first-committer-wins write is
// the only cross-worker coordination required.
type Resolver struct {
	Store    core.Store
	Workers  int
	Logger   *slog.Logger
	Counters *telemetry.Counters
}

type runState struct {
	graph   *Graph
	state   executionState
	results map[core.Identity]*TaskResult
}

// Run builds the dependency graph for roots and executes it.
//
// Task failures do not make Run fail: they are reported per identity in the
// RunReport (see RunReport.Err). Run returns an error only for graph
// construction problems (including cycles), store infrastructure failures,
// and cancellation.
func (r *Resolver) Run(ctx context.Context, roots ...core.Task) (*RunReport, error) {
	if r.Store == nil {
		return nil, fmt.Errorf("nil store")
	}

	g, err := Build(roots)
	if err != nil {
		return nil, err
	}

	rs := &runState{
		graph:   g,
		state:   make(executionState, g.Len()),
		results: make(map[core.Identity]*TaskResult, g.Len()),
	}
	for _, id := range g.order {
		rs.state[id] = StatePending
		rs.results[id] = &TaskResult{ID: id, State: StatePending, Location: r.Store.Location(id)}
	}

	runID := uuid.NewString()
	log := r.logger().With("run_id", runID)
	log.InfoContext(ctx, "resolving task graph", "tasks", g.Len(), "workers", r.workers())

	var runErr error
	if r.workers() > 1 {
		runErr = r.runParallel(ctx, log, rs)
	} else {
		runErr = r.runSerial(ctx, log, rs)
	}

	report := &RunReport{RunID: runID}
	for _, id := range g.order {
		res := *rs.results[id]
		res.State = rs.state[id]
		report.Results = append(report.Results, res)
	}
	return report, runErr
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Resolver) workers() int {
	if r.Workers > 1 {
		return r.Workers
	}
	return 1
}

// ready returns the pending identities whose dependencies are all done, in
// graph order (dependencies first, deterministic).
func (rs *runState) ready() []core.Identity {
	var out []core.Identity
	for _, id := range rs.graph.order {
		if rs.state[id] != StatePending {
			continue
		}
		ok := true
		for _, dep := range rs.graph.nodes[id].deps {
			if rs.state[dep] != StateDone {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, id)
		}
	}
	return out
}

func (rs *runState) allTerminal() bool {
	for _, st := range rs.state {
		if !isTerminal(st) {
			return false
		}
	}
	return true
}

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// fail marks id failed with cause and propagates the failure to every
// pending transitive dependent, in deterministic index order. Dependents
// record a dependency-failure cause naming the origin, so the report
// distinguishes "failed itself" from "never attempted". Returns the number
// of tasks marked failed.
func (rs *runState) fail(id core.Identity, cause error) int {
	failed := 0
	switch rs.state[id] {
	case StateRunning, StatePending:
		rs.state[id] = StateFailed
		rs.results[id].Err = cause
		failed++
	}

	origin := rs.graph.nodes[id]
	visited := make([]bool, len(rs.graph.order))
	visited[origin.index] = true

	hq := &intMinHeap{}
	heap.Init(hq)
	for _, dep := range origin.dependents {
		heap.Push(hq, rs.graph.nodes[dep].index)
	}

	for hq.Len() > 0 {
		idx := heap.Pop(hq).(int)
		if visited[idx] {
			continue
		}
		visited[idx] = true

		depID := rs.graph.order[idx]
		if rs.state[depID] == StatePending {
			rs.state[depID] = StateFailed
			rs.results[depID].Err = &core.TaskError{
				ID:  depID,
				Err: fmt.Errorf("dependency %s failed", id),
			}
			failed++
		}
		for _, next := range rs.graph.nodes[depID].dependents {
			if nidx := rs.graph.nodes[next].index; !visited[nidx] {
				heap.Push(hq, nidx)
			}
		}
	}
	return failed
}

func (r *Resolver) runSerial(ctx context.Context, log *slog.Logger, rs *runState) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run aborted: %w", err)
		}

		ready := rs.ready()
		if len(ready) == 0 {
			if rs.allTerminal() {
				return nil
			}
			return fmt.Errorf("no ready tasks but graph not finished")
		}

		id := ready[0]
		task, _ := rs.graph.Task(id)

		exists, err := r.Store.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("checking record for %s: %w", id, err)
		}
		if exists {
			if err := rs.state.transition(id, StatePending, StateDone); err != nil {
				return err
			}
			rs.results[id].FromCache = true
			r.addCached(ctx, 1)
			log.DebugContext(ctx, "task satisfied from cache", "task", id.String())
			continue
		}

		if err := rs.state.transition(id, StatePending, StateRunning); err != nil {
			return err
		}
		r.addStarted(ctx, 1)
		log.InfoContext(ctx, "task started", "task", id.String())

		docs, execErr := task.Execute(ctx, r.Store)
		if execErr == nil {
			execErr = r.Store.Write(ctx, id, core.NewRecord(id, docs))
		}
		if execErr != nil {
			n := rs.fail(id, &core.TaskError{ID: id, Err: execErr})
			r.addFailed(ctx, int64(n))
			log.ErrorContext(ctx, "task failed", "task", id.String(), "error", execErr)
			continue
		}

		if err := rs.state.transition(id, StateRunning, StateDone); err != nil {
			return err
		}
		rs.results[id].Documents = len(docs)
		r.addDocuments(ctx, int64(len(docs)))
		log.InfoContext(ctx, "task done", "task", id.String(), "documents", len(docs))
	}
}

type execOutcome struct {
	id   core.Identity
	docs core.DocumentSet
	err  error
}

func (r *Resolver) runParallel(ctx context.Context, log *slog.Logger, rs *runState) error {
	workCh := make(chan core.Identity)
	doneCh := make(chan execOutcome)

	var wg sync.WaitGroup
	for i := 0; i < r.workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range workCh {
				task, _ := rs.graph.Task(id)
				docs, err := task.Execute(ctx, r.Store)
				if err == nil {
					err = r.Store.Write(ctx, id, core.NewRecord(id, docs))
				}
				doneCh <- execOutcome{id: id, docs: docs, err: err}
			}
		}()
	}

	inFlight := 0
	finish := func(err error) error {
		// Let in-flight tasks land so workers can exit; their outcomes are
		// still recorded even when the run is aborted.
		for inFlight > 0 {
			o := <-doneCh
			inFlight--
			_ = r.recordOutcome(ctx, log, rs, o)
		}
		close(workCh)
		wg.Wait()
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return finish(fmt.Errorf("run aborted: %w", err))
		}

		progress := false
		for _, id := range rs.ready() {
			if inFlight >= r.workers() {
				break
			}
			exists, err := r.Store.Exists(ctx, id)
			if err != nil {
				return finish(fmt.Errorf("checking record for %s: %w", id, err))
			}
			if exists {
				if err := rs.state.transition(id, StatePending, StateDone); err != nil {
					return finish(err)
				}
				rs.results[id].FromCache = true
				r.addCached(ctx, 1)
				log.DebugContext(ctx, "task satisfied from cache", "task", id.String())
				progress = true
				continue
			}

			if err := rs.state.transition(id, StatePending, StateRunning); err != nil {
				return finish(err)
			}
			r.addStarted(ctx, 1)
			log.InfoContext(ctx, "task started", "task", id.String())
			inFlight++
			progress = true
			workCh <- id
		}

		if inFlight == 0 {
			if rs.allTerminal() {
				return finish(nil)
			}
			if progress {
				continue
			}
			return finish(fmt.Errorf("no ready tasks but graph not finished"))
		}
		if progress && inFlight < r.workers() {
			continue
		}

		select {
		case <-ctx.Done():
			return finish(fmt.Errorf("run aborted: %w", ctx.Err()))
		case o := <-doneCh:
			inFlight--
			if err := r.recordOutcome(ctx, log, rs, o); err != nil {
				return finish(err)
			}
		}
	}
}

func (r *Resolver) recordOutcome(ctx context.Context, log *slog.Logger, rs *runState, o execOutcome) error {
	if o.err != nil {
		n := rs.fail(o.id, &core.TaskError{ID: o.id, Err: o.err})
		r.addFailed(ctx, int64(n))
		log.ErrorContext(ctx, "task failed", "task", o.id.String(), "error", o.err)
		return nil
	}
	if err := rs.state.transition(o.id, StateRunning, StateDone); err != nil {
		return err
	}
	rs.results[o.id].Documents = len(o.docs)
	r.addDocuments(ctx, int64(len(o.docs)))
	log.InfoContext(ctx, "task done", "task", o.id.String(), "documents", len(o.docs))
	return nil
}

func (r *Resolver) addStarted(ctx context.Context, n int64) {
	if r.Counters != nil {
		r.Counters.TasksStarted.Add(ctx, n)
	}
}

func (r *Resolver) addCached(ctx context.Context, n int64) {
	if r.Counters != nil {
		r.Counters.TasksCached.Add(ctx, n)
	}
}

func (r *Resolver) addFailed(ctx context.Context, n int64) {
	if r.Counters != nil {
		r.Counters.TasksFailed.Add(ctx, n)
	}
}

func (r *Resolver) addDocuments(ctx context.Context, n int64) {
	if r.Counters != nil {
		r.Counters.DocumentsWritten.Add(ctx, n)
	}
}
