// Package models defines server-side data models persisted in the database.
package models

// Team is a named roster owned by a user. Logo holds the object-storage key
// of the uploaded image, empty when there is none.
type Team struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	Flag       string `json:"flag"`
	Logo       string `json:"logo"`
	Tag        string `json:"tag"`
	PublicTeam bool   `json:"public_team"`
}

func (t *Team) OwnerID() int64 { return t.UserID }

// TeamUpdate lists the columns a PUT may change. Nil means unchanged.
type TeamUpdate struct {
	UserID     *int64
	Name       *string
	Flag       *string
	Logo       *string
	Tag        *string
	PublicTeam *bool
}

func (u TeamUpdate) Empty() bool {
	return u.UserID == nil && u.Name == nil && u.Flag == nil &&
		u.Logo == nil && u.Tag == nil && u.PublicTeam == nil
}
