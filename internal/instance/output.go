package instance

import (
	"bufio"
	"fmt"
	"io"
)

// WriteSolution пишет решение в формате челленджа: "<имя> <старт>" построчно.
// Незапланированные вмешательства (старт 0) пропускаются.
func WriteSolution(w io.Writer, inst *Instance, starts []int) error {
	if len(starts) != inst.N() {
		return fmt.Errorf("starts length must be %d (got %d)", inst.N(), len(starts))
	}
	bw := bufio.NewWriter(w)
	for i, t := range starts {
		if t == 0 {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s %d\n", inst.Interventions[i].Name, t); err != nil {
			return err
		}
	}
	return bw.Flush()
}
