package audio

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mrdg/drumbox/dsp"
)

var ErrUnknownPreset = errors.New("unknown preset")

type Device interface {
	Set(key string, val interface{}) error
	Get(key string) (interface{}, error)
}

// Preset values may be given in the units shown to a user. They are
// converted against the sample rate when the preset is loaded.
type (
	decayMs float64
	db      float64
)

const (
	inheritClip = -1.
	tanhClip    = float64(dsp.ClipTanh)
	hardClip    = float64(dsp.ClipHard)
	foldClip    = float64(dsp.ClipFold)
)

type preset map[string]interface{}

var presets = map[string]preset{
	"gabber": {
		"kick.decay":           decayMs(420),
		"kick.attack":          280.,
		"kick.pitch":           45.,
		"kick.pitchdecay":      decayMs(28),
		"kick.drive":           22.,
		"kick.drivedecay":      decayMs(45),
		"kick.click":           db(-6),
		"kick.prehp":           35.,
		"kick.postgain":        db(-3),
		"kick.posthp":          28.,
		"kick.postlp":          6500.,
		"kick.clipmode":        foldClip,
		"kick.chain1.clipmode": inheritClip,
		"kick.chain1.mix":      0.45,
		"kick.chain1.drive":    1.30,
		"kick.chain1.lp":       8500.,
		"kick.chain1.asym":     0.05,
		"kick.chain2.clipmode": inheritClip,
		"kick.chain2.mix":      0.55,
		"kick.chain2.drive":    2.20,
		"kick.chain2.lp":       4200.,
		"kick.chain2.asym":     0.35,
		"kick.tok":             0.25,
		"kick.tokhp":           200.,
		"kick.crunch":          0.35,
		"kick.tail.decay":      0.99935,
		"kick.tail.mix":        0.65,
		"kick.tail.freqmul":    1.,
		"kick.sub.mix":         0.25,
		"kick.sub.lp":          160.,
		"kick.feedback":        0.18,
	},
	"hardstyle": {
		"kick.decay":           decayMs(520),
		"kick.attack":          240.,
		"kick.pitch":           52.,
		"kick.pitchdecay":      decayMs(35),
		"kick.drive":           18.,
		"kick.drivedecay":      decayMs(60),
		"kick.click":           db(-9),
		"kick.prehp":           30.,
		"kick.postgain":        db(-4.5),
		"kick.posthp":          24.,
		"kick.postlp":          8000.,
		"kick.clipmode":        hardClip,
		"kick.chain1.clipmode": inheritClip,
		"kick.chain1.mix":      0.70,
		"kick.chain1.drive":    1.20,
		"kick.chain1.lp":       9000.,
		"kick.chain1.asym":     0.05,
		"kick.chain2.clipmode": inheritClip,
		"kick.chain2.mix":      0.30,
		"kick.chain2.drive":    1.60,
		"kick.chain2.lp":       5200.,
		"kick.chain2.asym":     0.20,
		"kick.tok":             0.18,
		"kick.tokhp":           160.,
		"kick.crunch":          0.18,
		"kick.tail.decay":      0.99925,
		"kick.tail.mix":        0.55,
		"kick.tail.freqmul":    1.,
		"kick.sub.mix":         0.32,
		"kick.sub.lp":          180.,
		"kick.feedback":        0.12,
	},
	"tribecore": {
		"kick.decay":           decayMs(220),
		"kick.attack":          200.,
		"kick.pitch":           55.,
		"kick.pitchdecay":      decayMs(18),
		"kick.drive":           12.,
		"kick.drivedecay":      decayMs(35),
		"kick.click":           db(-3),
		"kick.prehp":           25.,
		"kick.postgain":        db(-3),
		"kick.posthp":          35.,
		"kick.postlp":          9500.,
		"kick.clipmode":        tanhClip,
		"kick.chain1.clipmode": inheritClip,
		"kick.chain1.mix":      0.75,
		"kick.chain1.drive":    1.05,
		"kick.chain1.lp":       10000.,
		"kick.chain1.asym":     -0.05,
		"kick.chain2.clipmode": inheritClip,
		"kick.chain2.mix":      0.25,
		"kick.chain2.drive":    1.30,
		"kick.chain2.lp":       6500.,
		"kick.chain2.asym":     0.10,
		"kick.tok":             0.35,
		"kick.tokhp":           260.,
		"kick.crunch":          0.10,
		"kick.tail.decay":      0.99910,
		"kick.tail.mix":        0.40,
		"kick.tail.freqmul":    1.,
		"kick.sub.mix":         0.38,
		"kick.sub.lp":          200.,
		"kick.feedback":        0.06,
	},
}

// PresetNames returns the names of all presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func LoadPreset(name string, d Device, sampleRate float64) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownPreset, name)
	}
	for k, v := range p {
		switch u := v.(type) {
		case decayMs:
			v = dsp.DecayCoeffFromMs(float64(u), sampleRate)
		case db:
			v = dsp.DbToLin(float64(u))
		}
		if err := d.Set(k, v); err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
	}
	return nil
}
