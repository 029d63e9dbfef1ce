package alns

import (
	"sync"

	"interventionSched/internal/solution"
)

// Cell хранит текущее решение рестарта вместе с поколением. Поколение
// растёт на каждом рестарте; фоновые правки, начатые в прошлом поколении,
// отбрасываются.
type Cell struct {
	mu  sync.Mutex
	val *solution.Candidate
	gen uint64
}

func NewCell(v *solution.Candidate) *Cell {
	return &Cell{val: v}
}

// Snapshot: копия текущего решения и поколение, в котором она снята.
func (c *Cell) Snapshot() (*solution.Candidate, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val.Clone(), c.gen
}

// Current возвращает копию текущего решения.
func (c *Cell) Current() *solution.Candidate {
	v, _ := c.Snapshot()
	return v
}

func (c *Cell) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Reset начинает новое поколение со значением v.
func (c *Cell) Reset(v *solution.Candidate) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.val = v
	c.gen++
	return c.gen
}

// Swap заменяет значение на v, если decide одобряет это по текущему
// значению. decide вызывается под блокировкой и не должен обращаться
// к ячейке.
func (c *Cell) Swap(v *solution.Candidate, decide func(cur *solution.Candidate) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !decide(c.val) {
		return false
	}
	c.val = v
	return true
}

// Commit: исход попытки фоновой фиксации.
type Commit uint8

const (
	Committed Commit = iota
	Stale
	NotBetter
)

func (r Commit) String() string {
	switch r {
	case Committed:
		return "committed"
	case Stale:
		return "stale"
	default:
		return "not_better"
	}
}

// CommitIfCurrent записывает v, только если поколение не изменилось с
// момента снимка и v лучше текущего значения больше чем на допуск.
func (c *Cell) CommitIfCurrent(gen uint64, v *solution.Candidate) Commit {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return Stale
	}
	if !solution.Improves(v.ExtendedObjective, c.val.ExtendedObjective) {
		return NotBetter
	}
	c.val = v
	return Committed
}
