package heuristics

import (
	"fmt"
	"sort"
)

type ConstructionOp struct {
	Name  string
	Build Construction
	// Stochastic: при рестарте имеет смысл строить заново.
	Stochastic bool
}

type RepairOp struct {
	Name  string
	Apply Repair
}

type DestroyOp struct {
	Name  string
	Apply Destroy
}

// Registry: все именованные операторы, собранные из примитивов по осям
// (уровень шума, смещение, свойство). Строится один раз при старте.
type Registry struct {
	Params Params

	constructions map[string]ConstructionOp
	repairs       map[string]RepairOp
	destroys      map[string]DestroyOp
}

// Pools: операторы, участвующие в конкретном запуске.
type Pools struct {
	Construction ConstructionOp
	Repairs      []RepairOp
	Destroys     []DestroyOp
}

type propertyNames struct {
	prop        Property
	least, most string
}

var (
	timedProperties = []propertyNames{
		{PropCost, "cheapest", "most_expensive"},
		{PropRD, "lrd1", "hrd"},
		{PropLength, "shortest1", "longest1"},
	}
	staticProperties = []propertyNames{
		{PropExclusions, "least_exclusions", "most_exclusions"},
		{PropUsage, "least_used", "most_used"},
	}
	removalProperties = []propertyNames{
		{PropCost, "cheapest", "most_expensive"},
		{PropRD, "lrd", "hrd"},
		{PropLength, "shortest", "longest"},
		{PropExclusions, "least_exclusions", "most_exclusions"},
		{PropUsage, "least_used", "most_used"},
	}
)

func NewRegistry(p Params) (*Registry, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	r := &Registry{
		Params:        p,
		constructions: map[string]ConstructionOp{},
		repairs:       map[string]RepairOp{},
		destroys:      map[string]DestroyOp{},
	}

	// Уровни: без префикса — точная жадность, n1 — шум, n2 — мягкое
	// смещение, n3 — оба.
	levels := []struct {
		prefix      string
		nu          float64
		least, most Bias
	}{
		{"", 0, Lowest, Highest},
		{"n1_", p.Noise, Lowest, Highest},
		{"n2_", 0, Interpolated(p.MuLow), Interpolated(p.MuHigh)},
		{"n3_", p.Noise, Interpolated(p.MuLow), Interpolated(p.MuHigh)},
	}
	for _, lv := range levels {
		for _, pn := range timedProperties {
			for _, side := range []struct {
				name string
				bias Bias
			}{{pn.least, lv.least}, {pn.most, lv.most}} {
				op, err := PropertyAtCheapestTimeInsert(lv.nu, side.bias, pn.prop, p.Batch(pn.prop))
				if err != nil {
					return nil, fmt.Errorf("repair %s%s: %w", lv.prefix, side.name, err)
				}
				r.addRepair(lv.prefix+side.name, op)
			}
		}
		for _, pn := range staticProperties {
			for _, side := range []struct {
				name string
				bias Bias
			}{{pn.least, lv.least}, {pn.most, lv.most}} {
				op, err := StaticPropertyInsert(lv.nu, side.bias, pn.prop)
				if err != nil {
					return nil, fmt.Errorf("repair %s%s: %w", lv.prefix, side.name, err)
				}
				r.addRepair(lv.prefix+side.name, op)
			}
		}
	}
	r.addRepair("random", RandomInsert(0))
	r.addRepair("n1_random", RandomInsert(p.Noise))
	r.addRepair("fixed", FixedOrderInsert(0))
	r.addRepair("n1_fixed", FixedOrderInsert(p.Noise))
	r.addRepair("lrd2", LRD2Insert)
	r.addRepair("longest2", Longest2Insert)
	r.addRepair("shortest2", Shortest2Insert)

	r.destroys["random"] = DestroyOp{Name: "random", Apply: RandomRemove}
	for _, pn := range removalProperties {
		for _, side := range []struct {
			name string
			ext  Extreme
		}{{pn.least, Least}, {pn.most, Most}} {
			op, err := Remove(pn.prop, side.ext)
			if err != nil {
				return nil, fmt.Errorf("destroy %s: %w", side.name, err)
			}
			r.destroys[side.name] = DestroyOp{Name: side.name, Apply: op}
		}
	}

	// Конструкции: жадное повторение одноимённой вставки.
	for _, name := range []string{
		"fixed", "cheapest", "most_expensive", "lrd1", "lrd2", "hrd",
		"longest1", "longest2", "shortest1", "shortest2", "most_exclusions",
	} {
		r.constructions[name] = ConstructionOp{Name: name, Build: Greedy(r.repairs[name].Apply)}
	}
	r.constructions["random"] = ConstructionOp{Name: "random", Build: Greedy(r.repairs["random"].Apply), Stochastic: true}
	r.constructions["dfs"] = ConstructionOp{Name: "dfs", Build: DFS}
	r.constructions["dfs_optimum"] = ConstructionOp{Name: "dfs_optimum", Build: DFSOptimum}

	return r, nil
}

func (r *Registry) addRepair(name string, op Repair) {
	r.repairs[name] = RepairOp{Name: name, Apply: op}
}

func (r *Registry) Construction(name string) (ConstructionOp, error) {
	op, ok := r.constructions[name]
	if !ok {
		return ConstructionOp{}, fmt.Errorf("неизвестная конструкция %q", name)
	}
	return op, nil
}

func (r *Registry) Repair(name string) (RepairOp, error) {
	op, ok := r.repairs[name]
	if !ok {
		return RepairOp{}, fmt.Errorf("неизвестный оператор вставки %q", name)
	}
	return op, nil
}

func (r *Registry) Destroy(name string) (DestroyOp, error) {
	op, ok := r.destroys[name]
	if !ok {
		return DestroyOp{}, fmt.Errorf("неизвестный оператор удаления %q", name)
	}
	return op, nil
}

// Select собирает пулы запуска. Пустой пул и неизвестное имя считаются ошибкой
// конфигурации; порядок пулов совпадает с порядком имён.
func (r *Registry) Select(construction string, repairs, destroys []string) (Pools, error) {
	var p Pools
	var err error
	if p.Construction, err = r.Construction(construction); err != nil {
		return Pools{}, err
	}
	if len(repairs) == 0 {
		return Pools{}, fmt.Errorf("пул операторов вставки пуст")
	}
	if len(destroys) == 0 {
		return Pools{}, fmt.Errorf("пул операторов удаления пуст")
	}
	seen := map[string]bool{}
	for _, name := range repairs {
		if seen["r/"+name] {
			return Pools{}, fmt.Errorf("оператор вставки %q указан дважды", name)
		}
		seen["r/"+name] = true
		op, err := r.Repair(name)
		if err != nil {
			return Pools{}, err
		}
		p.Repairs = append(p.Repairs, op)
	}
	for _, name := range destroys {
		if seen["d/"+name] {
			return Pools{}, fmt.Errorf("оператор удаления %q указан дважды", name)
		}
		seen["d/"+name] = true
		op, err := r.Destroy(name)
		if err != nil {
			return Pools{}, err
		}
		p.Destroys = append(p.Destroys, op)
	}
	return p, nil
}

func (r *Registry) ConstructionNames() []string { return sortedKeys(r.constructions) }
func (r *Registry) RepairNames() []string       { return sortedKeys(r.repairs) }
func (r *Registry) DestroyNames() []string      { return sortedKeys(r.destroys) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
