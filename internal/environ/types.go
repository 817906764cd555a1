// Package environ models climate variables and landscape metrics: natural
// cycles, human impact with non-linear feedback, and landscape resilience.
package environ

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// CycleComponent is one periodic term of a climate variable's natural
// variation. Periods are in simulated years and era-independent.
type CycleComponent struct {
	Amplitude   float64 `json:"amplitude"`
	PeriodYears float64 `json:"period_years"`
	Phase       float64 `json:"phase"`
}

// ClimateVariable is a bounded scalar driven by superposed natural cycles and
// a human-impact term, each scaled by a feedback modifier computed from the
// variable's own current value.
type ClimateVariable struct {
	Name     string  `json:"name"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Baseline float64 `json:"baseline"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`

	// VariationRange is the band around Baseline that natural cycles alone
	// can reach. Used by drift checks and the feedback threshold.
	VariationRange float64 `json:"variation_range"`

	Cycles []CycleComponent `json:"cycles"`

	// HumanSensitivity converts a unit of human impact into variable units.
	HumanSensitivity float64 `json:"human_sensitivity"`

	// FeedbackGain sizes self-reinforcement once the deviation from baseline
	// exceeds VariationRange (e.g. warming accelerating further warming).
	FeedbackGain float64 `json:"feedback_gain"`

	// JitterAmplitude sizes the short solar-activity noise term.
	JitterAmplitude float64 `json:"jitter_amplitude"`
}

// naturalCycle evaluates the superposed periodic components at the given
// absolute simulated year.
func (c *ClimateVariable) naturalCycle(year float64) float64 {
	var v float64
	for _, cy := range c.Cycles {
		if cy.PeriodYears <= 0 {
			continue
		}
		v += cy.Amplitude * math.Sin(2*math.Pi*year/cy.PeriodYears+cy.Phase)
	}
	return v
}

// FeedbackModifier is the non-linear self-reinforcement term. It is 1 inside
// the natural variation band and grows with the excess beyond it, capped so
// compounding over long horizons stays a contraction.
func (c *ClimateVariable) FeedbackModifier(cap float64) float64 {
	if c.VariationRange <= 0 {
		return 1
	}
	excess := math.Abs(c.Current-c.Baseline) - c.VariationRange
	if excess <= 0 {
		return 1
	}
	return math.Min(cap, 1+c.FeedbackGain*excess/c.VariationRange)
}

// LandscapeMetric is a 0–1 health figure with a resilience factor that is
// recomputed from present health each step.
type LandscapeMetric struct {
	Name       string  `json:"name"`
	Current    float64 `json:"current"`
	Previous   float64 `json:"previous"`
	Resilience float64 `json:"resilience"`
	RegenRate  float64 `json:"regen_rate"` // natural recovery per step at full conservation
}

// RecomputeResilience derives resilience from present health: intact systems
// shrug off more of an applied change than degraded ones.
func (m *LandscapeMetric) RecomputeResilience() {
	m.Resilience = clamp(0.15+0.6*m.Current, 0, 0.9)
}

// Climate variable names.
const (
	VarTemperature   = "temperature_anomaly" // °C relative to holocene baseline
	VarPrecipitation = "precipitation_index" // 1.0 = baseline rainfall
	VarCO2           = "co2_ppm"
)

// Landscape metric names.
const (
	MetricForestCover   = "forest_cover"
	MetricSoilFertility = "soil_fertility"
	MetricFreshwater    = "freshwater"
	MetricAirQuality    = "air_quality"
)

// State is the environment-layer snapshot.
type State struct {
	Climate   []ClimateVariable `json:"climate"`
	Landscape []LandscapeMetric `json:"landscape"`

	// NoiseSeed seeds the solar-activity jitter source. The source itself is
	// rebuilt from the seed after deserialization.
	NoiseSeed int64 `json:"noise_seed"`

	noise opensimplex.Noise
}

// NewBaseline returns a holocene-like starting environment.
func NewBaseline(noiseSeed int64) *State {
	return &State{
		NoiseSeed: noiseSeed,
		Climate: []ClimateVariable{
			{
				Name: VarTemperature, Current: 0, Previous: 0, Baseline: 0, Min: -6, Max: 10,
				VariationRange: 0.8, HumanSensitivity: 3.0, FeedbackGain: 0.4, JitterAmplitude: 0.05,
				Cycles: []CycleComponent{
					{Amplitude: 0.5, PeriodYears: 41000},
					{Amplitude: 0.2, PeriodYears: 1500},
				},
			},
			{
				Name: VarPrecipitation, Current: 1, Previous: 1, Baseline: 1, Min: 0.1, Max: 2.0,
				VariationRange: 0.15, HumanSensitivity: -0.3, FeedbackGain: 0.3, JitterAmplitude: 0.02,
				Cycles: []CycleComponent{
					{Amplitude: 0.08, PeriodYears: 23000},
					{Amplitude: 0.04, PeriodYears: 800},
				},
			},
			{
				Name: VarCO2, Current: 280, Previous: 280, Baseline: 280, Min: 150, Max: 2500,
				VariationRange: 30, HumanSensitivity: 400, FeedbackGain: 0.5, JitterAmplitude: 0.5,
				Cycles: []CycleComponent{
					{Amplitude: 20, PeriodYears: 100000},
				},
			},
		},
		Landscape: []LandscapeMetric{
			{Name: MetricForestCover, Current: 0.85, Previous: 0.85, Resilience: 0.66, RegenRate: 0.015},
			{Name: MetricSoilFertility, Current: 0.80, Previous: 0.80, Resilience: 0.63, RegenRate: 0.010},
			{Name: MetricFreshwater, Current: 0.90, Previous: 0.90, Resilience: 0.69, RegenRate: 0.020},
			{Name: MetricAirQuality, Current: 0.95, Previous: 0.95, Resilience: 0.72, RegenRate: 0.030},
		},
	}
}

// Clone returns a deep copy. The jitter source is shared intentionally: it is
// a pure function of (seed, coordinates).
func (s *State) Clone() *State {
	out := &State{
		Climate:   make([]ClimateVariable, len(s.Climate)),
		Landscape: make([]LandscapeMetric, len(s.Landscape)),
		NoiseSeed: s.NoiseSeed,
		noise:     s.noise,
	}
	copy(out.Climate, s.Climate)
	for i := range out.Climate {
		out.Climate[i].Cycles = append([]CycleComponent(nil), s.Climate[i].Cycles...)
	}
	copy(out.Landscape, s.Landscape)
	return out
}

// ClimateVar returns the named climate variable, or nil.
func (s *State) ClimateVar(name string) *ClimateVariable {
	for i := range s.Climate {
		if s.Climate[i].Name == name {
			return &s.Climate[i]
		}
	}
	return nil
}

// Metric returns the named landscape metric, or nil.
func (s *State) Metric(name string) *LandscapeMetric {
	for i := range s.Landscape {
		if s.Landscape[i].Name == name {
			return &s.Landscape[i]
		}
	}
	return nil
}

// jitter returns the short-scale noise term for climate variable idx at the
// given year. Deterministic in (NoiseSeed, idx, year).
func (s *State) jitter(idx int, year float64) float64 {
	if s.noise == nil {
		s.noise = opensimplex.NewNormalized(s.NoiseSeed)
	}
	// Normalized noise is in [0,1]; recenter to [-1,1].
	return 2*s.noise.Eval2(year/11.0, float64(idx)*17.3) - 1
}

// ResourceAvailability aggregates water and soil into the 0–1 figure the
// animal layer consumes as habitat input.
func (s *State) ResourceAvailability() float64 {
	water := s.Metric(MetricFreshwater)
	soil := s.Metric(MetricSoilFertility)
	if water == nil || soil == nil {
		return 0
	}
	return clamp(0.5*water.Current+0.5*soil.Current, 0, 1)
}

// HabitatQuality aggregates forest cover and air quality.
func (s *State) HabitatQuality() float64 {
	forest := s.Metric(MetricForestCover)
	air := s.Metric(MetricAirQuality)
	if forest == nil || air == nil {
		return 0
	}
	return clamp(0.7*forest.Current+0.3*air.Current, 0, 1)
}

// ClimateStress is the 0–1 deviation of temperature from its tolerable band.
func (s *State) ClimateStress() float64 {
	temp := s.ClimateVar(VarTemperature)
	if temp == nil {
		return 0
	}
	excess := math.Abs(temp.Current-temp.Baseline) - temp.VariationRange
	if excess <= 0 {
		return 0
	}
	return clamp(excess/4.0, 0, 1)
}

// LandscapeHealth is the mean landscape metric, used by breakthrough checks.
func (s *State) LandscapeHealth() float64 {
	if len(s.Landscape) == 0 {
		return 0
	}
	var sum float64
	for i := range s.Landscape {
		sum += s.Landscape[i].Current
	}
	return sum / float64(len(s.Landscape))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}
