package bounce

import (
	"fmt"
	"math"
	"time"
)

// Stats describes a rendered hit.
type Stats struct {
	Peak       float64
	RMS        float64
	Attack     time.Duration // time to 90% of the peak
	Decay6     time.Duration // first fall to -6 dB after the attack
	Decay20    time.Duration // first fall to -20 dB after the attack
	Duration   time.Duration // last sample above 1% of the peak
	DominantHz float64       // from zero crossings over the first 100 ms
}

func (s Stats) String() string {
	return fmt.Sprintf("peak %.3f rms %.3f attack %v decay -6dB %v -20dB %v duration %v freq %.1f Hz",
		s.Peak, s.RMS, s.Attack, s.Decay6, s.Decay20, s.Duration, s.DominantHz)
}

// Analyze measures a mono buffer.
func Analyze(samples []float32, sampleRate float64) Stats {
	var st Stats
	if len(samples) == 0 || sampleRate <= 0 {
		return st
	}
	at := func(n int) time.Duration {
		return time.Duration(float64(n) * float64(time.Second) / sampleRate)
	}

	var sum float64
	for _, s := range samples {
		v := math.Abs(float64(s))
		st.Peak = math.Max(st.Peak, v)
		sum += v * v
	}
	st.RMS = math.Sqrt(sum / float64(len(samples)))
	if st.Peak == 0 {
		return st
	}

	attack := 0
	for i, s := range samples {
		if math.Abs(float64(s)) >= 0.9*st.Peak {
			attack = i
			break
		}
	}
	st.Attack = at(attack)

	decay := func(level float64) time.Duration {
		for j := attack; j < len(samples); j++ {
			if math.Abs(float64(samples[j])) <= level*st.Peak {
				return at(j)
			}
		}
		return at(len(samples))
	}
	st.Decay6 = decay(0.5)
	st.Decay20 = decay(0.1)

	for i := len(samples) - 1; i >= 0; i-- {
		if math.Abs(float64(samples[i])) > 0.01*st.Peak {
			st.Duration = at(i)
			break
		}
	}

	window := min(len(samples), int(0.1*sampleRate))
	var crossings int
	for i := 1; i < window; i++ {
		if (samples[i-1] < 0) != (samples[i] < 0) {
			crossings++
		}
	}
	// Two crossings per cycle over a tenth of a second.
	st.DominantHz = float64(crossings) * 5
	return st
}
