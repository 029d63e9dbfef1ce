package localsearch

import (
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"interventionSched/internal/solution"
)

// pruneSlack: запас отсечения в параллельном одиночном сдвиге.
const pruneSlack = 10 * solution.Tolerance

// Mover реализует ходы одиночного и парного сдвига. Ходы рассчитаны на
// полное расписание; незапланированные вмешательства пропускаются.
type Mover struct {
	Cfg Config
}

func NewMover(cfg Config) (*Mover, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Mover{Cfg: cfg}, nil
}

// Estimate: лучший совместный перенос пары. T1 == 0, если улучшения нет.
type Estimate struct {
	Score  float64
	T1, T2 int
}

func (e Estimate) Improved() bool { return e.T1 != 0 }

// parallel раскладывает n задач по воркерам. Каждый воркер работает со
// своей копией кандидата; сам c в это время только читается.
func (m *Mover) parallel(c *solution.Candidate, n int, task func(w *solution.Candidate, k int)) {
	workers := min(m.Cfg.workers(), n)
	if workers <= 0 {
		return
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		lo := lo
		hi := min(lo+chunk, n)
		g.Go(func() error {
			w := c.Clone()
			for k := lo; k < hi; k++ {
				task(w, k)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// OneShift пробует перенести одно вмешательство из случайного
// подмножества размера max(1, depth*n) на любое другое время.
func (m *Mover) OneShift(c *solution.Candidate, rng *rand.Rand) bool {
	n := c.Instance().N()
	depth := max(1, int(float64(n)*m.Cfg.OneShiftDepth))
	var ids []int
	for _, i := range rng.Perm(n)[:depth] {
		if c.StartTime(i) != 0 {
			ids = append(ids, i)
		}
	}
	if len(ids) == 0 {
		return false
	}

	bestI, bestT := -1, 0
	if m.Cfg.FirstImprove {
		bestI, bestT = firstOneShift(c.Clone(), ids, c.ExtendedObjective)
	} else {
		type shift struct {
			score float64
			t     int
		}
		res := make([]shift, len(ids))
		b := newBound(c.ExtendedObjective)
		m.parallel(c, len(ids), func(w *solution.Candidate, k int) {
			i := ids[k]
			res[k] = shift{score: c.ExtendedObjective}
			old := w.StartTime(i)
			w.Unschedule(i)
			if b.Load()-w.ExtendedObjective > pruneSlack {
				for t := 1; t <= w.Instance().TMax(i); t++ {
					sc := w.EstimateSchedule(i, t).ExtendedObjective
					b.Lower(sc)
					if solution.Improves(sc, res[k].score) {
						res[k] = shift{score: sc, t: t}
					}
				}
			}
			w.Schedule(i, old)
		})

		best := c.ExtendedObjective
		for k, r := range res {
			if r.t != 0 && solution.Improves(r.score, best) {
				bestI, bestT, best = ids[k], r.t, r.score
			}
		}
	}

	if bestI < 0 {
		return false
	}
	c.Unschedule(bestI)
	c.Schedule(bestI, bestT)
	return true
}

func firstOneShift(w *solution.Candidate, ids []int, bound float64) (int, int) {
	for _, i := range ids {
		old := w.StartTime(i)
		w.Unschedule(i)
		if bound-w.ExtendedObjective > solution.Tolerance {
			for t := 1; t <= w.Instance().TMax(i); t++ {
				if solution.Improves(w.EstimateSchedule(i, t).ExtendedObjective, bound) {
					return i, t
				}
			}
		}
		w.Schedule(i, old)
	}
	return -1, 0
}

// TwoShiftEstimate оценивает совместный перенос i1 и i2, не меняя c.
func TwoShiftEstimate(c *solution.Candidate, i1, i2 int, firstImprove bool) Estimate {
	return twoShift(c.Clone(), i1, i2, c.ExtendedObjective, firstImprove)
}

// twoShift снимает оба вмешательства с рабочей копии w и перебирает
// пары времён. Внутренний цикл отсекается оценкой после постановки i1.
// По выходу w возвращается в исходное расписание.
func twoShift(w *solution.Candidate, i1, i2 int, bound float64, firstImprove bool) Estimate {
	best := Estimate{Score: bound}
	s1, s2 := w.StartTime(i1), w.StartTime(i2)
	w.Unschedule(i1)
	w.Unschedule(i2)
	defer func() {
		w.Schedule(i1, s1)
		w.Schedule(i2, s2)
	}()

	if best.Score-w.ExtendedObjective <= solution.Tolerance {
		return best
	}
	inst := w.Instance()
	for t1 := 1; t1 <= inst.TMax(i1); t1++ {
		w.Schedule(i1, t1)
		if best.Score-w.ExtendedObjective > solution.Tolerance {
			for t2 := 1; t2 <= inst.TMax(i2); t2++ {
				sc := w.EstimateSchedule(i2, t2).ExtendedObjective
				if solution.Improves(sc, best.Score) {
					best = Estimate{Score: sc, T1: t1, T2: t2}
					if firstImprove {
						w.Unschedule(i1)
						return best
					}
				}
			}
		}
		w.Unschedule(i1)
	}
	return best
}

// pairShift выбирает лучший перенос среди пар и фиксирует его.
func (m *Mover) pairShift(c *solution.Candidate, pairs [][2]int) bool {
	if len(pairs) == 0 {
		return false
	}
	bestK := -1
	var best Estimate

	if m.Cfg.FirstImprove {
		w := c.Clone()
		for k, p := range pairs {
			if e := twoShift(w, p[0], p[1], c.ExtendedObjective, true); e.Improved() {
				bestK, best = k, e
				break
			}
		}
	} else {
		res := make([]Estimate, len(pairs))
		b := newBound(c.ExtendedObjective)
		m.parallel(c, len(pairs), func(w *solution.Candidate, k int) {
			res[k] = twoShift(w, pairs[k][0], pairs[k][1], b.Load(), false)
			if res[k].Improved() {
				b.Lower(res[k].Score)
			}
		})
		score := c.ExtendedObjective
		for k, e := range res {
			if e.Improved() && solution.Improves(e.Score, score) {
				bestK, best, score = k, e, e.Score
			}
		}
	}

	if bestK < 0 {
		return false
	}
	i1, i2 := pairs[bestK][0], pairs[bestK][1]
	c.Unschedule(i1)
	c.Unschedule(i2)
	c.Schedule(i1, best.T1)
	c.Schedule(i2, best.T2)
	return true
}

// RandTwoShift просматривает TwoShiftLimit случайных пар различных
// запланированных вмешательств.
func (m *Mover) RandTwoShift(c *solution.Candidate, rng *rand.Rand) bool {
	s := c.Scheduled()
	if len(s) < 2 {
		return false
	}
	pairs := make([][2]int, m.Cfg.TwoShiftLimit)
	for k := range pairs {
		a := rng.Intn(len(s))
		b := rng.Intn(len(s) - 1)
		if b >= a {
			b++
		}
		pairs[k] = [2]int{s[a], s[b]}
	}
	return m.pairShift(c, pairs)
}

// ExclTwoShift переносит пары взаимоисключающих вмешательств. При нулевом
// штрафе за исключения улучшать нечего.
func (m *Mover) ExclTwoShift(c *solution.Candidate, rng *rand.Rand) bool {
	if c.ExclusionPenalty == 0 {
		return false
	}
	all := c.Instance().ExclusionPairs()
	rng.Shuffle(len(all), func(a, b int) { all[a], all[b] = all[b], all[a] })
	pairs := make([][2]int, 0, min(len(all), m.Cfg.TwoShiftLimit))
	for _, p := range all {
		if len(pairs) == m.Cfg.TwoShiftLimit {
			break
		}
		if c.StartTime(p[0]) != 0 && c.StartTime(p[1]) != 0 {
			pairs = append(pairs, p)
		}
	}
	return m.pairShift(c, pairs)
}

// FullTwoShift просматривает все пары запланированных вмешательств.
func (m *Mover) FullTwoShift(c *solution.Candidate, _ *rand.Rand) bool {
	s := c.Scheduled()
	var pairs [][2]int
	for a := 0; a < len(s); a++ {
		for b := a + 1; b < len(s); b++ {
			pairs = append(pairs, [2]int{s[a], s[b]})
		}
	}
	return m.pairShift(c, pairs)
}

// Operator пытается улучшить кандидата; меняет его только при успехе.
type Operator func(c *solution.Candidate, rng *rand.Rand) bool

type Op struct {
	Name  string
	Apply Operator
}

func OperatorNames() []string {
	return []string{"one_shift", "excl_two_shift", "rand_two_shift", "full_two_shift"}
}

func (m *Mover) Operator(name string) (Op, error) {
	var f Operator
	switch name {
	case "one_shift":
		f = m.OneShift
	case "excl_two_shift":
		f = m.ExclTwoShift
	case "rand_two_shift":
		f = m.RandTwoShift
	case "full_two_shift":
		f = m.FullTwoShift
	default:
		return Op{}, fmt.Errorf("неизвестный оператор локального поиска %q", name)
	}
	return Op{Name: name, Apply: f}, nil
}

// Operators собирает набор операторов; пустой набор недопустим.
func (m *Mover) Operators(names []string) ([]Op, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("не задан ни один оператор локального поиска")
	}
	seen := map[string]bool{}
	ops := make([]Op, 0, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("оператор локального поиска %q указан дважды", name)
		}
		seen[name] = true
		op, err := m.Operator(name)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
