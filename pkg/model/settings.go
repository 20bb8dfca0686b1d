package model

// Settings is the user-tunable behavior profile. Every mutation invalidates
// the live session because the values are rendered into the system context.
type Settings struct {
	Detail        int  `json:"detail"`     // 0-100
	Creativity    int  `json:"creativity"` // 0-100
	Warmth        int  `json:"warmth"`     // 0-100
	DeveloperMode bool `json:"developerMode"`
	EnableVoice   bool `json:"enableVoice"`
}

// DefaultSettings returns the profile used before the user tunes anything
func DefaultSettings() Settings {
	return Settings{
		Detail:     50,
		Creativity: 70,
		Warmth:     80,
	}
}

// Clamp limits the slider values to their valid [0,100] range
func (s Settings) Clamp() Settings {
	s.Detail = clamp(s.Detail)
	s.Creativity = clamp(s.Creativity)
	s.Warmth = clamp(s.Warmth)
	return s
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Temperature maps the creativity slider to the model temperature
func (s Settings) Temperature() float32 {
	return float32(s.Creativity) / 100
}
