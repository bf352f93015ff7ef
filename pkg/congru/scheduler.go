package congru

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Task is a unit of scheduler work: either an insert/observe task that
// may run concurrently with other non-merge tasks, or a MergeTask that
// must run in isolation.
type Task interface {
	// Run executes the task against sig. MergeTask is handled specially
	// by the scheduler and never has Run called on it directly.
	Run(sig *Signature)
}

// ExistsTask asks the carrier to contain a fresh ob, ignoring the
// result (existence-only observation).
type ExistsTask struct{}

func (ExistsTask) Run(sig *Signature) { sig.Carrier().TryInsert() }

// UnaryRelationTask asks a unary relation to contain arg.
type UnaryRelationTask struct {
	Rel string
	Arg Ob
}

func (t UnaryRelationTask) Run(sig *Signature) {
	if r := sig.UnaryRelation(t.Rel); r != nil {
		r.Insert(t.Arg)
	}
}

// BinaryRelationTask asks a binary relation to contain (Lhs,Rhs).
type BinaryRelationTask struct {
	Rel      string
	Lhs, Rhs Ob
}

func (t BinaryRelationTask) Run(sig *Signature) {
	if r := sig.BinaryRelation(t.Rel); r != nil {
		r.Insert(t.Lhs, t.Rhs)
	}
}

// NullaryFunctionTask asks a nullary function to contain Val.
type NullaryFunctionTask struct {
	Fun string
	Val Ob
}

func (t NullaryFunctionTask) Run(sig *Signature) {
	if f := sig.NullaryFunction(t.Fun); f != nil {
		f.Insert(t.Val)
	}
}

// InjectiveFunctionTask asks an injective function to record Arg->Val.
type InjectiveFunctionTask struct {
	Fun      string
	Arg, Val Ob
}

func (t InjectiveFunctionTask) Run(sig *Signature) {
	if f := sig.InjectiveFunction(t.Fun); f != nil {
		f.Insert(t.Arg, t.Val)
	}
}

// BinaryFunctionTask asks a binary function to record (Lhs,Rhs)->Val.
type BinaryFunctionTask struct {
	Fun      string
	Lhs, Rhs Ob
	Val      Ob
}

func (t BinaryFunctionTask) Run(sig *Signature) {
	if f := sig.BinaryFunction(t.Fun); f != nil {
		f.Insert(t.Lhs, t.Rhs, t.Val)
	}
}

// SymmetricFunctionTask asks a symmetric function to record {Lhs,Rhs}->Val.
type SymmetricFunctionTask struct {
	Fun      string
	Lhs, Rhs Ob
	Val      Ob
}

func (t SymmetricFunctionTask) Run(sig *Signature) {
	if f := sig.SymmetricFunction(t.Fun); f != nil {
		f.Insert(t.Lhs, t.Rhs, t.Val)
	}
}

// AssumeTask records an unparsed formula for later processing by an
// external parser/simplifier; the core only transports it.
type AssumeTask struct{ Formula string }

func (AssumeTask) Run(*Signature) {}

// MergeTask identifies Dep into its current representative. It never
// runs concurrently with any other task.
type MergeTask struct{ Dep Ob }

func (t MergeTask) Run(*Signature) {}

// CleanupTask asks for a periodic table-specific reindex (UpdateValues).
type CleanupTask struct{ TableName string }

func (t CleanupTask) Run(sig *Signature) {
	if tbl, ok := sig.AllTables()[t.TableName]; ok {
		tbl.UpdateValues()
	}
}

// SampleTask asks Sampler to insert a weighted-random term, routing the
// sampler's carrier/table writes through the same phase-lock discipline
// as every other task kind.
type SampleTask struct{ Sampler *Sampler }

func (t SampleTask) Run(*Signature) { t.Sampler.TryInsertRandom() }

// Scheduler serializes MergeTasks with respect to insert/observe tasks
// and drives the merge cascade to a fixed point, per spec §4.5. A
// shared-exclusive lock models the two phases: Submit acquires shared
// mode for non-merge tasks; a nonempty merge queue triggers an
// exclusive-mode drain that runs every queued MergeTask (and any new
// ones discovered while draining) before releasing.
type Scheduler struct {
	sig *Signature
	log *zap.Logger

	phase sync.RWMutex // read = insert phase participant, write = merge phase

	queueMu    sync.Mutex
	mergeQueue []Ob
}

// NewScheduler creates a Scheduler over sig, wiring the carrier's merge
// callback to enqueue a MergeTask for every successful merge (the
// scheduler is the sole producer into the merge queue, per §4.5).
func NewScheduler(sig *Signature, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{sig: sig, log: log}
	sig.Carrier().SetMergeCallback(func(dep Ob) {
		s.queueMu.Lock()
		s.mergeQueue = append(s.mergeQueue, dep)
		s.queueMu.Unlock()
	})
	return s
}

// Submit runs a non-merge task. It blocks, if necessary, until the
// merge phase (if any is running) releases the shared-mode lock, runs
// the task, then checks whether the task's own execution produced
// merges — if so, it drains them before returning, guaranteeing the
// structure is congruence-closed with respect to every task Submit has
// returned from.
func (s *Scheduler) Submit(t Task) {
	if _, isMerge := t.(MergeTask); isMerge {
		panic(&ProgrammerError{Op: "Scheduler.Submit", Msg: "submit MergeTask via internal drain only"})
	}
	s.phase.RLock()
	t.Run(s.sig)
	s.phase.RUnlock()
	s.drainMerges()
}

// SubmitBatch runs tasks concurrently (bounded by the caller's own
// goroutine fan-out) and drains merges once after all have completed,
// matching §4.5's "insert/observe tasks may run in parallel across
// threads ... between merges" guarantee.
func (s *Scheduler) SubmitBatch(tasks []Task) {
	var wg sync.WaitGroup
	s.phase.RLock()
	for _, t := range tasks {
		wg.Add(1)
		go func(t Task) {
			defer wg.Done()
			t.Run(s.sig)
		}(t)
	}
	wg.Wait()
	s.phase.RUnlock()
	s.drainMerges()
}

// drainMerges runs the exclusive merge phase until the merge queue is
// empty. New merges discovered during UnsafeMerge are pushed onto the
// queue (by the carrier's merge callback, which still fires during the
// exclusive phase since it is a plain function call, not itself gated
// by the phase lock) and processed in the same exclusive phase.
func (s *Scheduler) drainMerges() {
	s.queueMu.Lock()
	if len(s.mergeQueue) == 0 {
		s.queueMu.Unlock()
		return
	}
	s.queueMu.Unlock()

	s.log.Debug("phase transition: insert -> merge")
	s.phase.Lock()
	defer func() {
		s.phase.Unlock()
		s.log.Debug("phase transition: merge -> insert")
	}()

	depth := 0
	for {
		s.queueMu.Lock()
		if len(s.mergeQueue) == 0 {
			s.queueMu.Unlock()
			break
		}
		dep := s.mergeQueue[0]
		s.mergeQueue = s.mergeQueue[1:]
		s.queueMu.Unlock()

		depth++
		for _, tbl := range s.sig.AllTables() {
			tbl.UnsafeMerge(dep)
		}
	}
	for _, tbl := range s.sig.AllTables() {
		tbl.UpdateValues()
	}
	s.log.Debug("merge cascade drained", zap.Int("depth", depth))
}

// Survey runs until ctx is done, repeatedly calling next to obtain and
// Submit the next batch of tasks. On stop, pending non-merge tasks may
// be dropped but any scheduled merges are always drained before Survey
// returns, leaving the structure congruence-closed. Every log line
// emitted during the run is tagged with a fresh correlation ID so
// interleaved surveys can be told apart in aggregate log output.
func (s *Scheduler) Survey(ctx context.Context, next func(ctx context.Context) ([]Task, bool)) {
	correlationID := uuid.NewString()
	log := s.log.With(zap.String("correlation_id", correlationID))
	log.Debug("survey started")
	defer log.Debug("survey finished")

	for {
		select {
		case <-ctx.Done():
			s.drainMergesLogged(log)
			return
		default:
		}
		tasks, more := next(ctx)
		if len(tasks) > 0 {
			s.SubmitBatch(tasks)
		}
		if !more {
			s.drainMergesLogged(log)
			return
		}
	}
}

// drainMergesLogged runs drainMerges with log substituted for the
// scheduler's default logger, so a Survey's correlation ID threads
// through every phase-transition log line it triggers.
func (s *Scheduler) drainMergesLogged(log *zap.Logger) {
	prev := s.log
	s.log = log
	defer func() { s.log = prev }()
	s.drainMerges()
}

// SurveyFor is a convenience wrapper around Survey bounding the run to
// a wall-clock deadline.
func (s *Scheduler) SurveyFor(d time.Duration, next func(ctx context.Context) ([]Task, bool)) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	s.Survey(ctx, next)
}
