package solution

import (
	"fmt"

	"interventionSched/internal/instance"
)

// Candidate: частичное или полное расписание с инкрементально
// поддерживаемой целевой функцией. Копируется через Clone; один экземпляр
// не должен использоваться из нескольких горутин одновременно.
type Candidate struct {
	Objective

	// UnscheduledCnt[i]: сколько раз вмешательство i снималось разрушением.
	UnscheduledCnt []int

	inst       *instance.Instance
	start      []int
	nScheduled int

	risk      [][]float64 // [t-1][сценарий]
	work      [][]float64 // [r][t-1]
	mean      []float64
	excess    []float64
	sumMean   float64
	sumExcess float64
}

// New возвращает пустое расписание экземпляра.
func New(inst *instance.Instance) *Candidate {
	if !inst.Prepared() {
		panic("solution: instance is not prepared")
	}
	c := &Candidate{
		inst:           inst,
		start:          make([]int, inst.N()),
		UnscheduledCnt: make([]int, inst.N()),
		risk:           make([][]float64, inst.T),
		work:           make([][]float64, len(inst.Resources)),
		mean:           make([]float64, inst.T),
		excess:         make([]float64, inst.T),
	}
	for t := range c.risk {
		c.risk[t] = make([]float64, inst.Scenarios[t])
	}
	for r, res := range inst.Resources {
		c.work[r] = make([]float64, inst.T)
		for t := 0; t < inst.T; t++ {
			c.WorkloadUnderuse += underuse(0, res.Min[t])
		}
	}
	c.refresh()
	return c
}

func (c *Candidate) Clone() *Candidate {
	cp := *c
	cp.start = append([]int(nil), c.start...)
	cp.UnscheduledCnt = append([]int(nil), c.UnscheduledCnt...)
	cp.risk = make([][]float64, len(c.risk))
	for t, row := range c.risk {
		cp.risk[t] = append([]float64(nil), row...)
	}
	cp.work = make([][]float64, len(c.work))
	for r, row := range c.work {
		cp.work[r] = append([]float64(nil), row...)
	}
	cp.mean = append([]float64(nil), c.mean...)
	cp.excess = append([]float64(nil), c.excess...)
	return &cp
}

func (c *Candidate) Instance() *instance.Instance { return c.inst }

// StartTime возвращает старт вмешательства i или 0, если оно не запланировано.
func (c *Candidate) StartTime(i int) int { return c.start[i] }

func (c *Candidate) Starts() []int { return append([]int(nil), c.start...) }

func (c *Candidate) NumScheduled() int   { return c.nScheduled }
func (c *Candidate) NumUnscheduled() int { return len(c.start) - c.nScheduled }
func (c *Candidate) HasUnscheduled() bool {
	return c.nScheduled < len(c.start)
}

// Scheduled и Unscheduled перечисляют множества по возрастанию индекса.
func (c *Candidate) Scheduled() []int {
	out := make([]int, 0, c.nScheduled)
	for i, s := range c.start {
		if s != 0 {
			out = append(out, i)
		}
	}
	return out
}

func (c *Candidate) Unscheduled() []int {
	out := make([]int, 0, len(c.start)-c.nScheduled)
	for i, s := range c.start {
		if s == 0 {
			out = append(out, i)
		}
	}
	return out
}

// FirstUnscheduled возвращает наименьший незапланированный индекс или -1.
func (c *Candidate) FirstUnscheduled() int {
	for i, s := range c.start {
		if s == 0 {
			return i
		}
	}
	return -1
}

func (c *Candidate) IsValid() bool {
	const eps = 1e-9
	return !c.HasUnscheduled() &&
		c.WorkloadOveruse <= eps &&
		c.WorkloadUnderuse <= eps &&
		c.ExclusionPenalty == 0
}

func (c *Candidate) Schedule(i, t int) {
	if c.start[i] != 0 {
		panic(fmt.Sprintf("solution: intervention %d is already scheduled at %d", i, c.start[i]))
	}
	if t < 1 || t > c.inst.TMax(i) {
		panic(fmt.Sprintf("solution: start %d of intervention %d out of range [1,%d]", t, i, c.inst.TMax(i)))
	}
	c.Objective = c.apply(i, t, 1, true)
	c.start[i] = t
	c.nScheduled++
}

func (c *Candidate) Unschedule(i int) {
	t := c.start[i]
	if t == 0 {
		panic(fmt.Sprintf("solution: intervention %d is not scheduled", i))
	}
	c.Objective = c.apply(i, t, -1, true)
	c.start[i] = 0
	c.nScheduled--
}

// EstimateSchedule не меняет кандидата.
func (c *Candidate) EstimateSchedule(i, t int) Objective {
	if t < 1 || t > c.inst.TMax(i) {
		panic(fmt.Sprintf("solution: start %d of intervention %d out of range [1,%d]", t, i, c.inst.TMax(i)))
	}
	return c.apply(i, t, 1, false)
}

// EstimateUnschedule не меняет кандидата.
func (c *Candidate) EstimateUnschedule(i int) Objective {
	t := c.start[i]
	if t == 0 {
		panic(fmt.Sprintf("solution: intervention %d is not scheduled", i))
	}
	return c.apply(i, t, -1, false)
}

// apply пересчитывает только периоды, которые занимает вмешательство i со
// стартом t. При commit=false состояние кандидата не трогается.
func (c *Candidate) apply(i, t int, sign float64, commit bool) Objective {
	inst := c.inst
	iv := inst.Interventions[i]
	first, n := iv.Span(t)

	o := c.Objective
	sumMean, sumExcess := c.sumMean, c.sumExcess
	sorted := make([]float64, inst.MaxScenarios())
	var row []float64
	if !commit {
		row = make([]float64, inst.MaxScenarios())
	}

	for k := 0; k < n; k++ {
		p := t + k - 1
		cell := first + k

		contrib := iv.Risk(cell)
		var r []float64
		if commit {
			r = c.risk[p]
		} else {
			r = row[:len(contrib)]
			copy(r, c.risk[p])
		}
		for j, v := range contrib {
			r[j] += sign * v
		}
		m, e := periodStats(r, inst.Quantile, sorted)
		sumMean += m - c.mean[p]
		sumExcess += e - c.excess[p]
		if commit {
			c.mean[p], c.excess[p] = m, e
		}

		for ri, res := range inst.Resources {
			w := iv.Workload(cell, ri)
			if w == 0 {
				continue
			}
			old := c.work[ri][p]
			nw := old + sign*w
			o.TotalResourceUse += sign * w
			o.WorkloadOveruse += overuse(nw, res.Max[p]) - overuse(old, res.Max[p])
			o.WorkloadUnderuse += underuse(nw, res.Min[p]) - underuse(old, res.Min[p])
			if commit {
				c.work[ri][p] = nw
			}
		}
	}

	for _, pt := range inst.Excluded(i) {
		sj := c.start[pt.ID]
		if sj == 0 {
			continue
		}
		cnt := overlap(t, n, sj, inst.Duration(pt.ID, sj), pt.Season)
		o.ExclusionPenalty += int(sign) * cnt
	}

	if commit {
		c.sumMean, c.sumExcess = sumMean, sumExcess
	}
	o.MeanRisk = sumMean / float64(inst.T)
	o.ExpectedExcess = sumExcess / float64(inst.T)
	o.finish(inst.Alpha)
	return o
}

func (c *Candidate) refresh() {
	c.MeanRisk = c.sumMean / float64(c.inst.T)
	c.ExpectedExcess = c.sumExcess / float64(c.inst.T)
	c.Objective.finish(c.inst.Alpha)
}

// Recompute считает целевую функцию с нуля по текущему расписанию.
// Используется для проверки инкрементального учёта.
func (c *Candidate) Recompute() Objective {
	inst := c.inst
	risk := make([][]float64, inst.T)
	for p := range risk {
		risk[p] = make([]float64, inst.Scenarios[p])
	}
	work := make([][]float64, len(inst.Resources))
	for r := range work {
		work[r] = make([]float64, inst.T)
	}

	var o Objective
	for i, t := range c.start {
		if t == 0 {
			continue
		}
		iv := inst.Interventions[i]
		first, n := iv.Span(t)
		for k := 0; k < n; k++ {
			p := t + k - 1
			for j, v := range iv.Risk(first + k) {
				risk[p][j] += v
			}
			for r := range inst.Resources {
				w := iv.Workload(first+k, r)
				work[r][p] += w
				o.TotalResourceUse += w
			}
		}
	}

	sorted := make([]float64, inst.MaxScenarios())
	sumMean, sumExcess := 0.0, 0.0
	for p := range risk {
		m, e := periodStats(risk[p], inst.Quantile, sorted)
		sumMean += m
		sumExcess += e
	}
	for r, res := range inst.Resources {
		for p := 0; p < inst.T; p++ {
			o.WorkloadOveruse += overuse(work[r][p], res.Max[p])
			o.WorkloadUnderuse += underuse(work[r][p], res.Min[p])
		}
	}
	for _, e := range inst.Exclusions {
		sa, sb := c.start[e.A], c.start[e.B]
		if sa == 0 || sb == 0 {
			continue
		}
		mask := make([]bool, inst.T+1)
		for _, p := range e.Periods {
			mask[p] = true
		}
		o.ExclusionPenalty += overlap(sa, inst.Duration(e.A, sa), sb, inst.Duration(e.B, sb), mask)
	}

	o.MeanRisk = sumMean / float64(inst.T)
	o.ExpectedExcess = sumExcess / float64(inst.T)
	o.finish(inst.Alpha)
	return o
}
