package models

import "time"

// User is a platform account keyed by its Steam identity. A user owns
// itself.
type User struct {
	ID         int64     `json:"id"`
	SteamID    string    `json:"steam_id"`
	Name       string    `json:"name"`
	Admin      bool      `json:"admin"`
	SuperAdmin bool      `json:"super_admin"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) OwnerID() int64 { return u.ID }

// UserUpdate lists the columns a PUT may change. Nil means unchanged.
type UserUpdate struct {
	Name       *string
	Admin      *bool
	SuperAdmin *bool
}

func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Admin == nil && u.SuperAdmin == nil
}

// ChangesPrivileges reports whether the update touches admin flags.
func (u UserUpdate) ChangesPrivileges() bool {
	return u.Admin != nil || u.SuperAdmin != nil
}
