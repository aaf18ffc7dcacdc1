package position

// isotonic returns the non-decreasing sequence closest to ys in weighted
// least squares, using pool adjacent violators. Weights must be positive.
func isotonic(ys, ws []float64) []float64 {
	type block struct {
		sum, weight float64
		n           int
	}
	value := func(b block) float64 { return b.sum / b.weight }

	stack := make([]block, 0, len(ys))
	for i := range ys {
		stack = append(stack, block{sum: ys[i] * ws[i], weight: ws[i], n: 1})
		for len(stack) > 1 && value(stack[len(stack)-2]) > value(stack[len(stack)-1]) {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			prev := &stack[len(stack)-1]
			prev.sum += top.sum
			prev.weight += top.weight
			prev.n += top.n
		}
	}

	out := make([]float64, 0, len(ys))
	for _, b := range stack {
		v := value(b)
		for j := 0; j < b.n; j++ {
			out = append(out, v)
		}
	}
	return out
}
