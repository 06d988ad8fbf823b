package efp

import (
	"runtime"
	"sync"
)

// BatchCompute applies Compute across many events, fanned out over njobs
// goroutines.  Each worker owns a disjoint slice of the output and shares
// the read-only contraction plan, so no locking is needed on the hot path.
// njobs <= 0 uses one worker per CPU.
func (efp *EFP) BatchCompute(events []Event, njobs int) ([]float64, error) {
	out := make([]float64, len(events))

	if njobs <= 0 {
		njobs = runtime.NumCPU()
	}
	if njobs > len(events) {
		njobs = len(events)
	}

	if njobs <= 1 {
		for i, event := range events {
			val, err := efp.Compute(event)
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	chunk := (len(events) + njobs - 1) / njobs
	for start := 0; start < len(events); start += chunk {
		end := min(start+chunk, len(events))

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				val, err := efp.Compute(events[i])
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				out[i] = val
			}
		}(start, end)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
