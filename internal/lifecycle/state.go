package lifecycle

// State is a lifecycle state.
type State int

// Lifecycle states in execution order, then the terminal outcomes.
const (
	Selecting State = iota
	Validating
	SettingUp
	Invoking
	TearingDown
	Resetting
	Done
	Failed
	Skipped
)

var stateNames = [...]string{
	Selecting:   "selecting",
	Validating:  "validating",
	SettingUp:   "setting-up",
	Invoking:    "invoking",
	TearingDown: "tearing-down",
	Resetting:   "resetting",
	Done:        "done",
	Failed:      "failed",
	Skipped:     "skipped",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s ends a variant.
func (s State) Terminal() bool {
	return s == Done || s == Failed || s == Skipped
}
