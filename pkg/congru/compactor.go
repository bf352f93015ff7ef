package congru

// Compact renumbers the structure's reps into a dense prefix
// 1..rep_count. It first removes every non-rep ob (a merge cascade has
// already folded every table reference to its rep, so deps carry no
// information once update_values has run), which frees their slots;
// it then, for every rep numbered above rep_count, allocates one of
// the freed slots and merges the rep down into it via the scheduler,
// draining the cascade to completion.
func Compact(st *Structure, sched *Scheduler) {
	c := st.Carrier()
	target := Ob(c.RepCount())

	var ob Ob
	for ob = 1; ob <= c.ItemDim(); ob++ {
		if c.Present(ob) && !c.IsRep(ob) {
			_ = c.UnsafeRemove(ob)
		}
	}

	c.insertCursor.Store(0)
	for ob = target + 1; ob <= c.ItemDim(); ob++ {
		if !c.Present(ob) || !c.IsRep(ob) {
			continue
		}
		fresh := c.TryInsert()
		if fresh == 0 {
			continue
		}
		if fresh > target {
			// No freed slot at or below target remained; fresh stays
			// allocated as its own rep rather than being merged upward.
			continue
		}
		c.Merge(ob, fresh)
	}
	sched.drainMerges()
}
