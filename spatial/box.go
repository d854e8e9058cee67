// Package spatial answers rectangular region queries over a board snapshot.
//
// A Box is given by its top-left and bottom-right corners with the top-left on
// the far row (TL.Y >= BR.Y). Contains tests the closed rectangle, while the
// scanned cells are columns [TL.X, BR.X) and rows [BR.Y, TL.Y). A box with zero
// or negative area scans nothing.
package spatial

import "github.com/nstehr/funnel/model"

type Box struct {
	TL, BR model.Coord
	snap   *model.Snapshot
}

func NewBox(snap *model.Snapshot, tl, br model.Coord) Box {
	return Box{TL: tl, BR: br, snap: snap}
}

func (b Box) width() int  { return b.BR.X - b.TL.X }
func (b Box) height() int { return b.TL.Y - b.BR.Y }

// Area is width times height; it is negative for inverted corners.
func (b Box) Area() int {
	return b.width() * b.height()
}

func (b Box) empty() bool { return b.width() <= 0 || b.height() <= 0 }

// Contains reports whether c lies in the closed rectangle, edges included.
// Unlike the scans it does not depend on the area: a flat box still holds its line.
func (b Box) Contains(c model.Coord) bool {
	return c.X >= b.TL.X && c.X <= b.BR.X && c.Y >= b.BR.Y && c.Y <= b.TL.Y
}

// scan visits every unit in the box, nearest row first. Returning false stops the walk.
func (b Box) scan(visit func(model.Unit) bool) {
	if b.empty() || b.snap == nil {
		return
	}
	for y := b.BR.Y; y < b.TL.Y; y++ {
		for x := b.TL.X; x < b.BR.X; x++ {
			for _, u := range b.snap.UnitsAt(model.Coord{X: x, Y: y}) {
				if !visit(u) {
					return
				}
			}
		}
	}
}

// Units lists units whose kind is in kinds.
func (b Box) Units(kinds model.KindSet) []model.Unit {
	var out []model.Unit
	b.scan(func(u model.Unit) bool {
		if kinds.Has(u.Kind) {
			out = append(out, u)
		}
		return true
	})
	return out
}

func (b Box) Count(kinds model.KindSet) int {
	n := 0
	b.scan(func(u model.Unit) bool {
		if kinds.Has(u.Kind) {
			n++
		}
		return true
	})
	return n
}

// TotalHealth sums the health of every unit in the box regardless of kind.
func (b Box) TotalHealth() float64 {
	var total float64
	b.scan(func(u model.Unit) bool {
		total += u.Health
		return true
	})
	return total
}

// TotalCost sums the price of every unit owned by owner in the box.
func (b Box) TotalCost(owner int) model.Cost {
	var total model.Cost
	b.scan(func(u model.Unit) bool {
		if u.Owner == owner {
			total = total.Add(u.Cost)
		}
		return true
	})
	return total
}

func (b Box) Density(kind model.UnitKind) float64 {
	if b.empty() {
		return 0
	}
	return float64(b.Count(model.Kinds(kind))) / float64(b.Area())
}

// LowestUnit finds the first unit of kind on the nearest row of the box.
func (b Box) LowestUnit(kind model.UnitKind) (model.Coord, bool) {
	var (
		found model.Coord
		ok    bool
	)
	b.scan(func(u model.Unit) bool {
		if u.Kind == kind {
			found, ok = u.Coord(), true
			return false
		}
		return true
	})
	return found, ok
}
