package diff

// Op is the kind of edit a line represents.
type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

// Line is one line of an edit script. Old and New are 1-based line numbers;
// zero means the line does not exist on that side.
type Line struct {
	Op   Op
	Text string
	Old  int
	New  int
}

// Compute returns the shortest edit script turning a into b.
// Based on "An O(ND) Difference Algorithm and Its Variations" (Myers, 1986).
func Compute(a, b []string) []Line {
	n, m := len(a), len(b)
	limit := n + m
	offset := limit + 1

	v := make([]int, 2*limit+3)
	var trace [][]int

	for d := 0; d <= limit; d++ {
		snapshot := make([]int, len(v))
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k

			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x

			if x >= n && y >= m {
				return backtrack(a, b, trace, offset)
			}
		}
	}

	return nil
}

// backtrack walks the saved frontiers from the end back to the origin.
func backtrack(a, b []string, trace [][]int, offset int) []Line {
	x, y := len(a), len(b)
	var script []Line

	for d := len(trace) - 1; d >= 0; d-- {
		v := trace[d]
		k := x - y

		prevK := k - 1
		if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
			prevK = k + 1
		}
		prevX := v[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			script = append(script, Line{Op: Equal, Text: a[x-1], Old: x, New: y})
			x--
			y--
		}

		if d == 0 {
			break
		}
		if x == prevX {
			script = append(script, Line{Op: Insert, Text: b[y-1], New: y})
			y--
		} else {
			script = append(script, Line{Op: Delete, Text: a[x-1], Old: x})
			x--
		}
	}

	for i, j := 0, len(script)-1; i < j; i, j = i+1, j-1 {
		script[i], script[j] = script[j], script[i]
	}
	return script
}
