package congru

import (
	"context"
	"math/rand"
	"testing"
	"time"
)

func TestSchedulerSubmitDrainsTriggeredMerges(t *testing.T) {
	sig := NewDefaultSignature(NewCarrier(10))
	app := sig.DeclareBinaryFunction("APP")
	sched := NewScheduler(sig, nil)

	a := sig.Carrier().TryInsert()
	b := sig.Carrier().TryInsert()
	v1 := sig.Carrier().TryInsert()
	v2 := sig.Carrier().TryInsert()

	sched.Submit(BinaryFunctionTask{Fun: "APP", Lhs: a, Rhs: b, Val: v1})
	sched.Submit(BinaryFunctionTask{Fun: "APP", Lhs: a, Rhs: b, Val: v2})

	if sig.Carrier().Find(v1) != sig.Carrier().Find(v2) {
		t.Error("colliding inserts should have triggered and drained a merge")
	}
	if app.Find(a, b) == 0 {
		t.Error("APP(a,b) should be defined after submitting both tasks")
	}
}

func TestSchedulerSubmitPanicsOnMergeTask(t *testing.T) {
	sig := NewDefaultSignature(NewCarrier(10))
	sched := NewScheduler(sig, nil)
	defer func() {
		if recover() == nil {
			t.Error("Submit should panic when given a MergeTask directly")
		}
	}()
	sched.Submit(MergeTask{Dep: 1})
}

func TestSchedulerSubmitBatchConcurrentInserts(t *testing.T) {
	sig := NewDefaultSignature(NewCarrier(10))
	rel := sig.DeclareUnaryRelation("P")
	sched := NewScheduler(sig, nil)

	var obs []Ob
	for i := 0; i < 5; i++ {
		obs = append(obs, sig.Carrier().TryInsert())
	}
	var tasks []Task
	for _, ob := range obs {
		tasks = append(tasks, UnaryRelationTask{Rel: "P", Arg: ob})
	}
	sched.SubmitBatch(tasks)

	for _, ob := range obs {
		if !rel.Find(ob) {
			t.Errorf("ob %d should be present in P after SubmitBatch", ob)
		}
	}
}

func TestSchedulerSurveyDrainsAndStops(t *testing.T) {
	sig := NewDefaultSignature(NewCarrier(10))
	sig.DeclareUnaryRelation("P")
	sched := NewScheduler(sig, nil)

	a := sig.Carrier().TryInsert()
	calls := 0
	next := func(ctx context.Context) ([]Task, bool) {
		calls++
		if calls > 1 {
			return nil, false
		}
		return []Task{UnaryRelationTask{Rel: "P", Arg: a}}, true
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sched.Survey(ctx, next)

	if !sig.UnaryRelation("P").Find(a) {
		t.Error("task emitted before stop should have been submitted")
	}
}

func TestSchedulerSubmitRunsSampleTaskUnderPhaseLock(t *testing.T) {
	sig := NewDefaultSignature(NewCarrier(10))
	sig.DeclareNullaryFunction("I")
	sched := NewScheduler(sig, nil)
	sampler := NewSampler(sig, rand.New(rand.NewSource(1)), map[string]float64{"I": 1.0})

	sched.Submit(SampleTask{Sampler: sampler})

	if sig.Carrier().ItemCount() == 0 {
		t.Error("Submit(SampleTask) should have inserted an ob via the sampler")
	}
}

func TestSchedulerSurveyForRespectsDeadline(t *testing.T) {
	sig := NewDefaultSignature(NewCarrier(10))
	sched := NewScheduler(sig, nil)
	next := func(ctx context.Context) ([]Task, bool) {
		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(time.Millisecond):
			return nil, true
		}
	}
	start := time.Now()
	sched.SurveyFor(20*time.Millisecond, next)
	if time.Since(start) > time.Second {
		t.Error("SurveyFor should return near its deadline, not hang")
	}
}
