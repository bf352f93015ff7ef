package congru

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Aggregate merges src's contents into dest (disjoint carriers with
// compatible signatures). It allocates one dest ob per present src ob,
// builds a translation table, then re-inserts every src entry through
// dest's tables in parallel per table kind. sched must be the Scheduler
// wired to dest's carrier: re-insertion collisions enqueue MergeTasks
// through the carrier's merge callback exactly as any other task would,
// and Aggregate drains them (per spec §4.7's "resolved using the merge
// scheduler") before returning, so dest is congruence-closed the moment
// Aggregate completes. If clearSrc is true, src is emptied afterward.
func Aggregate(ctx context.Context, dest, src *Structure, sched *Scheduler, clearSrc bool) error {
	srcCarrier := src.Carrier()
	translate := make(map[Ob]Ob, srcCarrier.ItemCount())

	var ob Ob
	for ob = 1; ob <= srcCarrier.ItemDim(); ob++ {
		if !srcCarrier.Present(ob) {
			continue
		}
		rep := srcCarrier.Find(ob)
		if dst, ok := translate[rep]; ok {
			translate[ob] = dst
			continue
		}
		dst := dest.Carrier().TryInsert()
		if dst == 0 {
			return &CapacityExceeded{ItemDim: dest.Carrier().ItemDim()}
		}
		translate[rep] = dst
		translate[ob] = dst
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return aggregateUnaryRelations(dest, src, translate) })
	g.Go(func() error { return aggregateBinaryRelations(dest, src, translate) })
	g.Go(func() error { return aggregateNullaryFunctions(dest, src, translate) })
	g.Go(func() error { return aggregateInjectiveFunctions(dest, src, translate) })
	g.Go(func() error { return aggregateBinaryFunctions(dest, src, translate) })
	g.Go(func() error { return aggregateSymmetricFunctions(dest, src, translate) })
	if err := g.Wait(); err != nil {
		return err
	}
	if sched != nil {
		sched.drainMerges()
	}

	if clearSrc {
		src.Clear()
	}
	return nil
}

func aggregateUnaryRelations(dest, src *Structure, translate map[Ob]Ob) error {
	for name, t := range src.sig.unaryRelations {
		dt := dest.sig.UnaryRelation(name)
		if dt == nil {
			dt = dest.sig.DeclareUnaryRelation(name)
		}
		t.Iter(func(x Ob) bool {
			dt.Insert(translate[x])
			return true
		})
	}
	return nil
}

func aggregateBinaryRelations(dest, src *Structure, translate map[Ob]Ob) error {
	for name, t := range src.sig.binaryRelations {
		dt := dest.sig.BinaryRelation(name)
		if dt == nil {
			if t.symmetric {
				dt = dest.sig.DeclareSymmetricBinaryRelation(name)
			} else {
				dt = dest.sig.DeclareBinaryRelation(name)
			}
		}
		var x Ob
		for x = 1; x <= src.Carrier().ItemDim(); x++ {
			if !src.Carrier().Present(x) {
				continue
			}
			t.IterRow(x, func(y Ob) bool {
				dt.Insert(translate[x], translate[y])
				return true
			})
		}
	}
	return nil
}

func aggregateNullaryFunctions(dest, src *Structure, translate map[Ob]Ob) error {
	for name, t := range src.sig.nullaryFunctions {
		dt := dest.sig.NullaryFunction(name)
		if dt == nil {
			dt = dest.sig.DeclareNullaryFunction(name)
		}
		if v := t.Find(); v != 0 {
			dt.Insert(translate[v])
		}
	}
	return nil
}

func aggregateInjectiveFunctions(dest, src *Structure, translate map[Ob]Ob) error {
	for name, t := range src.sig.injectiveFunctions {
		dt := dest.sig.InjectiveFunction(name)
		if dt == nil {
			dt = dest.sig.DeclareInjectiveFunction(name)
		}
		t.Iter(func(x Ob) bool {
			dt.Insert(translate[x], translate[t.Find(x)])
			return true
		})
	}
	return nil
}

func aggregateBinaryFunctions(dest, src *Structure, translate map[Ob]Ob) error {
	for name, t := range src.sig.binaryFunctions {
		dt := dest.sig.BinaryFunction(name)
		if dt == nil {
			dt = dest.sig.DeclareBinaryFunction(name)
		}
		var x Ob
		for x = 1; x <= src.Carrier().ItemDim(); x++ {
			if !src.Carrier().Present(x) {
				continue
			}
			t.IterRow(x, func(y Ob) bool {
				dt.Insert(translate[x], translate[y], translate[t.Find(x, y)])
				return true
			})
		}
	}
	return nil
}

func aggregateSymmetricFunctions(dest, src *Structure, translate map[Ob]Ob) error {
	for name, t := range src.sig.symmetricFunctions {
		dt := dest.sig.SymmetricFunction(name)
		if dt == nil {
			dt = dest.sig.DeclareSymmetricFunction(name)
		}
		var x Ob
		for x = 1; x <= src.Carrier().ItemDim(); x++ {
			if !src.Carrier().Present(x) {
				continue
			}
			t.IterLine(x, func(y Ob) bool {
				if x <= y {
					dt.Insert(translate[x], translate[y], translate[t.Find(x, y)])
				}
				return true
			})
		}
	}
	return nil
}
