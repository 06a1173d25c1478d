package models

// Mode is the record schema active while scanning the rows of a document.
type Mode int

const (
	// ModeNone is the state before any header marker has been seen.
	ModeNone Mode = iota
	ModeDivision    // current-division sweeps, header "Auth#"
	ModeMaintenance // maintenance activities, header "ID TEAM"
	ModeFuture      // future/unconfirmed sweeps, header "Authorization#"
)

func (m Mode) String() string {
	switch m {
	case ModeDivision:
		return "division"
	case ModeMaintenance:
		return "maintenance"
	case ModeFuture:
		return "future"
	default:
		return "none"
	}
}
