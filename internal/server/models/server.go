package models

// Server is a game server record. RCONPassword holds the stored blob
// (hex nonce followed by hex ciphertext) and is never serialized; handlers
// expose the decrypted value through a separate view.
type Server struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"user_id"`
	IPString     string  `json:"ip_string"`
	Port         int     `json:"port"`
	DisplayName  string  `json:"display_name"`
	RCONPassword *string `json:"-"`
	PublicServer bool    `json:"public_server"`
}

func (s *Server) OwnerID() int64 { return s.UserID }

// ServerUpdate lists the columns a PUT may change. Nil means unchanged.
// ClearRCONPassword sets the stored password back to NULL and cannot be
// combined with RCONPassword.
type ServerUpdate struct {
	UserID            *int64
	IPString          *string
	Port              *int
	DisplayName       *string
	RCONPassword      *string
	ClearRCONPassword bool
	PublicServer      *bool
}

func (u ServerUpdate) Empty() bool {
	return u.UserID == nil && u.IPString == nil && u.Port == nil &&
		u.DisplayName == nil && u.RCONPassword == nil && !u.ClearRCONPassword && u.PublicServer == nil
}
