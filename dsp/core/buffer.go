package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// ToFloat32 narrows src into dst, clamping every sample to [-1, 1].
// It returns the number of converted samples, min(len(dst), len(src)).
func ToFloat32(dst []float32, src []float64) int {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		v := src[i]
		switch {
		case v > 1:
			v = 1
		case v < -1:
			v = -1
		case v != v:
			v = 0
		}
		dst[i] = float32(v)
	}
	return n
}
