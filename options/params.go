package options

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownParameter is returned when a knob name is not recognized.
var ErrUnknownParameter = errors.New("unknown parameter")

// Params are the user-tunable effect knobs. YAML keys double as the names
// accepted by Set and Get.
type Params struct {
	EffectIntensity   float64 `yaml:"effectIntensity"`
	ContrastPower     float64 `yaml:"contrastPower"`
	ColorSaturation   float64 `yaml:"colorSaturation"`
	HeatSensitivity   float64 `yaml:"heatSensitivity"`
	VideoBlendAmount  float64 `yaml:"videoBlendAmount"`
	GradientShift     float64 `yaml:"gradientShift"`
	HeatDecay         float64 `yaml:"heatDecay"`
	InteractionRadius float64 `yaml:"interactionRadius"`
	Reactivity        float64 `yaml:"reactivity"`
}

// DefaultParams returns the resting parameter set.
func DefaultParams() Params {
	return Params{
		EffectIntensity:   1.3,
		ContrastPower:     0.8,
		ColorSaturation:   1.5,
		HeatSensitivity:   0.5,
		VideoBlendAmount:  1.0,
		GradientShift:     0,
		HeatDecay:         0.9,
		InteractionRadius: 1.0,
		Reactivity:        3.0,
	}
}

type bounds struct{ min, max float64 }

var ranges = map[string]bounds{
	"heatDecay":         {0.8, 0.99},
	"heatSensitivity":   {0.1, 2.0},
	"interactionRadius": {0.1, 3.0},
	"reactivity":        {0.1, 3.0},
}

func (p *Params) field(name string) *float64 {
	switch name {
	case "effectIntensity":
		return &p.EffectIntensity
	case "contrastPower":
		return &p.ContrastPower
	case "colorSaturation":
		return &p.ColorSaturation
	case "heatSensitivity":
		return &p.HeatSensitivity
	case "videoBlendAmount":
		return &p.VideoBlendAmount
	case "gradientShift":
		return &p.GradientShift
	case "heatDecay":
		return &p.HeatDecay
	case "interactionRadius":
		return &p.InteractionRadius
	case "reactivity":
		return &p.Reactivity
	}
	return nil
}

// Names lists every knob name in sorted order.
func Names() []string {
	names := []string{
		"effectIntensity", "contrastPower", "colorSaturation",
		"heatSensitivity", "videoBlendAmount", "gradientShift",
		"heatDecay", "interactionRadius", "reactivity",
	}
	sort.Strings(names)
	return names
}

// Set assigns a knob by name, clamping ranged knobs.
func (p *Params) Set(name string, value float64) error {
	f := p.field(name)
	if f == nil {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("parameter %s: value %v is not finite", name, value)
	}
	if r, ok := ranges[name]; ok {
		value = math.Min(math.Max(value, r.min), r.max)
	}
	*f = value
	return nil
}

// Get reads a knob by name.
func (p Params) Get(name string) (float64, error) {
	f := p.field(name)
	if f == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return *f, nil
}

// Clamp forces every ranged knob into its range.
func (p *Params) Clamp() {
	for name, r := range ranges {
		f := p.field(name)
		*f = math.Min(math.Max(*f, r.min), r.max)
	}
}

// ParseParams decodes YAML on top of the defaults. Missing keys keep their
// default value and unknown keys are rejected.
func ParseParams(data []byte) (Params, error) {
	p := DefaultParams()
	var raw map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return p, fmt.Errorf("failed to parse params YAML: %w", err)
	}
	for name, v := range raw {
		if err := p.Set(name, v); err != nil {
			return p, err
		}
	}
	return p, nil
}

// LoadParams reads a YAML parameter file.
func LoadParams(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultParams(), fmt.Errorf("failed to read params file %s: %w", path, err)
	}
	p, err := ParseParams(data)
	if err != nil {
		return p, fmt.Errorf("invalid params in %s: %w", path, err)
	}
	return p, nil
}

// Marshal encodes the parameters as YAML.
func (p Params) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}
