package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratio keeps numerator events out of every denominator; a zero ratio keeps everything.
type ratio struct {
	num, den uint64
}

// ratioSampler thins debug logs on hot paths without taking a lock per event.
type ratioSampler struct {
	cfg     atomic.Pointer[ratio]
	counter atomic.Uint64
}

func newRatioSampler(numerator, denominator int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(numerator, denominator)
	return s
}

// Set configures the sampling ratio; non-positive values disable sampling.
func (s *ratioSampler) Set(numerator, denominator int) {
	r := &ratio{}
	if numerator > 0 && denominator > 0 {
		if numerator > denominator {
			numerator = denominator
		}
		r.num, r.den = uint64(numerator), uint64(denominator)
	}
	s.cfg.Store(r)
	s.counter.Store(0)
}

// Allow reports whether the current event should pass sampling.
func (s *ratioSampler) Allow() bool {
	r := s.cfg.Load()
	if r == nil || r.den == 0 {
		return true
	}
	n := s.counter.Add(1) - 1
	return n%r.den < r.num
}

// parseRatioSpec accepts "n/d" or a bare "d" meaning 1/d.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0
	}
	if num, den, ok := strings.Cut(spec, "/"); ok {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 == nil && err2 == nil {
			return n, d
		}
		return 0, 0
	}
	if v, err := strconv.Atoi(spec); err == nil && v > 0 {
		return 1, v
	}
	return 0, 0
}
