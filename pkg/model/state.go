package model

type Zone string

const (
	ZoneCore        Zone = "Core Chamber"
	ZoneStudio      Zone = "Studio"
	ZoneObservatory Zone = "Observatory"
	ZoneInterface   Zone = "Interface Hall"
	ZoneSandbox     Zone = "Sandbox"
	ZoneDeveloper   Zone = "Developer Wing"
	ZoneArchive     Zone = "Archive"
	ZoneNexus       Zone = "Nexus"
)

type CreativeMode string

const (
	ModeAssistive  CreativeMode = "Assistive"
	ModeGenerative CreativeMode = "Generative"
	ModeReflective CreativeMode = "Reflective"
)

type ResonanceLevel string

const (
	ResonanceLow    ResonanceLevel = "Low"
	ResonanceMedium ResonanceLevel = "Medium"
	ResonanceHigh   ResonanceLevel = "High"
)

// State is the telemetry snapshot embedded in a model reply. It is derived
// output only; the user never edits it.
type State struct {
	ComplexityLoad   float64        `json:"complexityLoad"`   // 0.0 - 1.0
	ContextAlignment float64        `json:"contextAlignment"` // 0.0 - 1.0
	ActiveZone       Zone           `json:"activeZone"`
	CreativeMode     CreativeMode   `json:"creativeMode"`
	ResonanceLevel   ResonanceLevel `json:"resonanceLevel"`
	ValueTension     string         `json:"valueTension"`
}

// DefaultState is the idle snapshot shown before any reply carries telemetry
func DefaultState() *State {
	return &State{
		ComplexityLoad:   0,
		ContextAlignment: 1.0,
		ActiveZone:       ZoneInterface,
		CreativeMode:     ModeAssistive,
		ResonanceLevel:   ResonanceMedium,
	}
}
