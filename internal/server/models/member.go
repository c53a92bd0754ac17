package models

// Member is one roster entry. Auth is the canonical identity (SteamID64);
// a blank Name means the display name is derived at read time.
type Member struct {
	ID     int64  `json:"-"`
	TeamID int64  `json:"-"`
	Auth   string `json:"auth"`
	Name   string `json:"name"`
}

// RosterEntry is a member as shown to clients, with derived fields filled.
type RosterEntry struct {
	Name    string `json:"name"`
	Image   string `json:"image,omitempty"`
	Derived bool   `json:"derived,omitempty"`
}
