package domain

// Clip names an animation state played on the button.
type Clip string

const (
	ClipNone       Clip = ""
	ClipIdle       Clip = "idle"
	ClipSleep      Clip = "sleep"
	ClipActivate   Clip = "activate"
	ClipDeactivate Clip = "deactivate"
)

// Clips lists every supported clip in a stable order.
var Clips = []Clip{ClipIdle, ClipSleep, ClipActivate, ClipDeactivate}

// Valid reports whether c is one of the supported clips.
func (c Clip) Valid() bool {
	for _, known := range Clips {
		if c == known {
			return true
		}
	}
	return false
}
