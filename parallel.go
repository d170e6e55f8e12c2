package pixelcloud

import (
	"context"
	"runtime"
	"sync"
)

// SampleParallel is Sample with the row scan split across workers.
// Sampled rows are dealt out as contiguous bands and the per-band results
// are joined in band order, so the output is identical to the serial scan.
// workers <= 0 uses one worker per CPU.
func SampleParallel(ctx context.Context, r *Raster, opt Options, workers int) (*Cloud, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r == nil || r.W <= 0 || r.H <= 0 {
		return &Cloud{}, nil
	}
	step := opt.stride()
	rows := (r.H + step - 1) / step
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, rows)
	if workers == 1 {
		return Sample(r, opt)
	}

	type band struct{ first, count int } // in sampled-row indices
	bands := make([]band, 0, workers)
	base := rows / workers
	extra := rows % workers
	next := 0
	for i := range workers {
		n := base
		if i < extra {
			n++
		}
		bands = append(bands, band{first: next, count: n})
		next += n
	}

	cols := (r.W + step - 1) / step
	results := make([][]Point, len(bands))
	var wg sync.WaitGroup
	for i, b := range bands {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pts := make([]Point, 0, b.count*cols)
			for row := b.first; row < b.first+b.count; row++ {
				if ctx.Err() != nil {
					return
				}
				pts = sampleRow(r, opt, step, row*step, pts)
			}
			results[i] = pts
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, pts := range results {
		total += len(pts)
	}
	points := make([]Point, 0, total)
	for _, pts := range results {
		points = append(points, pts...)
	}
	return &Cloud{Points: points}, nil
}
