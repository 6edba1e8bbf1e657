package replaygain

import "math"

// biquad is a second-order IIR section in direct form II transposed.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.z1
	f.z1 = f.b1*x - f.a1*y + f.z2
	f.z2 = f.b2*x - f.a2*y
	return y
}

// kWeighting is the two-stage BS.1770 pre-filter for one channel: a high
// shelf modeling the acoustic effect of the head followed by a highpass.
type kWeighting struct {
	shelf    biquad
	highpass biquad
}

// Analog prototype constants from the BS.1770 reference filter, used to
// rederive digital coefficients for arbitrary sample rates via the
// bilinear transform.
const (
	shelfFreq    = 1681.974450955533
	shelfGainDB  = 3.999843853973347
	shelfQ       = 0.7071752369554196
	highpassFreq = 38.13547087602444
	highpassQ    = 0.5003270373238773
	shelfVbExp   = 0.4996667741545416
)

func newKWeighting(sampleRate int) *kWeighting {
	fs := float64(sampleRate)

	k := math.Tan(math.Pi * shelfFreq / fs)
	vh := math.Pow(10, shelfGainDB/20)
	vb := math.Pow(vh, shelfVbExp)
	norm := 1 + k/shelfQ + k*k
	shelf := biquad{
		b0: (vh + vb*k/shelfQ + k*k) / norm,
		b1: 2 * (k*k - vh) / norm,
		b2: (vh - vb*k/shelfQ + k*k) / norm,
		a1: 2 * (k*k - 1) / norm,
		a2: (1 - k/shelfQ + k*k) / norm,
	}

	k = math.Tan(math.Pi * highpassFreq / fs)
	norm = 1 + k/highpassQ + k*k
	highpass := biquad{
		b0: 1,
		b1: -2,
		b2: 1,
		a1: 2 * (k*k - 1) / norm,
		a2: (1 - k/highpassQ + k*k) / norm,
	}

	return &kWeighting{shelf: shelf, highpass: highpass}
}

func (w *kWeighting) process(x float64) float64 {
	return w.highpass.process(w.shelf.process(x))
}
