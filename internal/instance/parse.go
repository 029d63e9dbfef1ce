package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// Parse читает экземпляр в формате ROADEF/EURO 2020 из файла.
func Parse(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	inst, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	inst.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return inst, nil
}

func ParseBytes(data []byte) (*Instance, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}
	root := gjson.ParseBytes(data)

	inst := &Instance{
		T:        int(root.Get("T").Int()),
		Alpha:    root.Get("Alpha").Float(),
		Quantile: root.Get("Quantile").Float(),
	}
	if inst.T <= 0 {
		return nil, fmt.Errorf("T must be > 0 (got %q)", root.Get("T").Raw)
	}
	root.Get("Scenarios_number").ForEach(func(_, v gjson.Result) bool {
		inst.Scenarios = append(inst.Scenarios, int(v.Int()))
		return true
	})
	if len(inst.Scenarios) != inst.T {
		return nil, fmt.Errorf("Scenarios_number length must be T=%d (got %d)", inst.T, len(inst.Scenarios))
	}
	for t, n := range inst.Scenarios {
		if n <= 0 {
			return nil, fmt.Errorf("Scenarios_number[%d] must be > 0 (got %d)", t+1, n)
		}
	}

	resIdx := map[string]int{}
	root.Get("Resources").ForEach(func(k, v gjson.Result) bool {
		resIdx[k.String()] = len(inst.Resources)
		inst.Resources = append(inst.Resources, Resource{
			Name: k.String(),
			Min:  readFloats(v.Get("min")),
			Max:  readFloats(v.Get("max")),
		})
		return true
	})

	seasons := map[string][]int{}
	root.Get("Seasons").ForEach(func(k, v gjson.Result) bool {
		var periods []int
		v.ForEach(func(_, t gjson.Result) bool {
			periods = append(periods, int(t.Int()))
			return true
		})
		seasons[k.String()] = periods
		return true
	})

	ivIdx := map[string]int{}
	var perr error
	root.Get("Interventions").ForEach(func(k, v gjson.Result) bool {
		iv, err := parseIntervention(k.String(), v, inst.Scenarios, resIdx)
		if err != nil {
			perr = fmt.Errorf("intervention %q: %w", k.String(), err)
			return false
		}
		ivIdx[iv.Name] = len(inst.Interventions)
		inst.Interventions = append(inst.Interventions, iv)
		return true
	})
	if perr != nil {
		return nil, perr
	}

	root.Get("Exclusions").ForEach(func(k, v gjson.Result) bool {
		parts := v.Array()
		if len(parts) != 3 {
			perr = fmt.Errorf("exclusion %q: want [a, b, season] (got %s)", k.String(), v.Raw)
			return false
		}
		a, okA := ivIdx[parts[0].String()]
		b, okB := ivIdx[parts[1].String()]
		periods, okS := seasons[parts[2].String()]
		if !okA || !okB || !okS {
			perr = fmt.Errorf("exclusion %q references unknown intervention or season", k.String())
			return false
		}
		inst.Exclusions = append(inst.Exclusions, Exclusion{A: a, B: b, Season: parts[2].String(), Periods: periods})
		return true
	})
	if perr != nil {
		return nil, perr
	}

	if err := inst.Prepare(); err != nil {
		return nil, err
	}
	return inst, nil
}

func parseIntervention(name string, v gjson.Result, scenarios []int, resIdx map[string]int) (*Intervention, error) {
	tmax := int(v.Get("tmax").Int())
	delta := make([]int, 0, tmax)
	v.Get("Delta").ForEach(func(_, d gjson.Result) bool {
		delta = append(delta, int(d.Int()))
		return true
	})
	// В исходных данных Delta задана на весь горизонт, нужны только старты до tmax.
	if len(delta) > tmax {
		delta = delta[:tmax]
	}
	iv, err := NewIntervention(name, tmax, delta, len(resIdx), scenarios)
	if err != nil {
		return nil, err
	}

	var perr error
	v.Get("workload").ForEach(func(rk, rv gjson.Result) bool {
		r, ok := resIdx[rk.String()]
		if !ok {
			perr = fmt.Errorf("unknown resource %q", rk.String())
			return false
		}
		rv.ForEach(func(tk, tv gjson.Result) bool {
			t := int(tk.Int())
			tv.ForEach(func(sk, w gjson.Result) bool {
				s := int(sk.Int())
				if s > tmax {
					return true
				}
				if err := iv.SetWorkload(r, t, s, w.Float()); err != nil {
					perr = fmt.Errorf("workload %s/%d/%d: %w", rk.String(), t, s, err)
					return false
				}
				return true
			})
			return perr == nil
		})
		return perr == nil
	})
	if perr != nil {
		return nil, perr
	}

	v.Get("risk").ForEach(func(tk, tv gjson.Result) bool {
		t := int(tk.Int())
		tv.ForEach(func(sk, rv gjson.Result) bool {
			s := int(sk.Int())
			if s > tmax {
				return true
			}
			if err := iv.SetRisk(t, s, readFloats(rv)); err != nil {
				perr = fmt.Errorf("risk %d/%d: %w", t, s, err)
				return false
			}
			return true
		})
		return perr == nil
	})
	if perr != nil {
		return nil, perr
	}
	return iv, nil
}

func readFloats(v gjson.Result) []float64 {
	var out []float64
	v.ForEach(func(_, x gjson.Result) bool {
		out = append(out, x.Float())
		return true
	})
	return out
}
