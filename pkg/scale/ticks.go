package scale

import "math"

// Thresholds for rounding a raw step to 1, 2, 5 or 10 times a power of ten.
var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// tickSpec returns the integer tick bounds and the increment for roughly
// count ticks over [start, stop]. A negative increment means 1/-inc, which
// keeps fractional steps exact.
func tickSpec(start, stop, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	ratio := step / math.Pow(10, power)

	factor := 1.0

	switch {
	case ratio >= e10:
		factor = 10
	case ratio >= e5:
		factor = 5
	case ratio >= e2:
		factor = 2
	}

	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)

		if i1/inc < start {
			i1++
		}

		if i2/inc > stop {
			i2--
		}

		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)

		if i1*inc < start {
			i1++
		}

		if i2*inc > stop {
			i2--
		}
	}

	if i2 < i1 && count >= 0.5 && count < 2 {
		return tickSpec(start, stop, count*2)
	}

	return i1, i2, inc
}

// Ticks returns about count round values spanning [start, stop], inclusive.
func Ticks(start, stop float64, count int) []float64 {
	if count <= 0 || math.IsNaN(start) || math.IsNaN(stop) {
		return nil
	}

	if start == stop {
		return []float64{start}
	}

	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	i1, i2, inc := tickSpec(start, stop, float64(count))
	if !(i2 >= i1) {
		return nil
	}

	n := int(i2 - i1 + 1)
	out := make([]float64, n)

	for i := range n {
		k := i1 + float64(i)
		if inc < 0 {
			out[i] = k / -inc
		} else {
			out[i] = k * inc
		}
	}

	if reverse {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	return out
}

// TickStep returns the distance between adjacent ticks for count ticks over
// [start, stop]. It is negative when stop < start.
func TickStep(start, stop float64, count int) float64 {
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	_, _, inc := tickSpec(start, stop, float64(count))

	step := inc
	if inc < 0 {
		step = 1 / -inc
	}

	if reverse {
		return -step
	}

	return step
}
