package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/gofiber/fiber/v2"
)

// decodeSingle reads one request object from body. Older clients wrap the
// object in a one-element array; both shapes are accepted.
func decodeSingle(body []byte, dst any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", common.ErrorValidation)
	}

	if body[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return fmt.Errorf("%w: malformed json", common.ErrorValidation)
		}
		if len(list) != 1 {
			return fmt.Errorf("%w: expected exactly one object", common.ErrorValidation)
		}
		body = list[0]
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: malformed json", common.ErrorValidation)
	}
	return nil
}

// authNames is a roster payload: canonical or raw identity to display name.
// A value is either a string or an object with a "name" field. Anything
// else is ignored, so a malformed payload reconciles nothing.
type authNames map[string]string

func (a *authNames) UnmarshalJSON(b []byte) error {
	out := authNames{}
	*a = out

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}

	for k, v := range raw {
		var name string
		if err := json.Unmarshal(v, &name); err == nil {
			out[k] = name
			continue
		}
		var obj struct {
			Name *string `json:"name"`
		}
		if err := json.Unmarshal(v, &obj); err == nil && obj.Name != nil {
			out[k] = *obj.Name
		}
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad %s", common.ErrorValidation, name)
	}
	return id, nil
}

type createUserRequest struct {
	SteamID    string `json:"steam_id"`
	Name       string `json:"name"`
	Admin      bool   `json:"admin"`
	SuperAdmin bool   `json:"super_admin"`
}

type updateUserRequest struct {
	SteamID    string  `json:"steam_id"`
	Name       *string `json:"name"`
	Admin      *bool   `json:"admin"`
	SuperAdmin *bool   `json:"super_admin"`
}

type createServerRequest struct {
	IPString     string  `json:"ip_string"`
	Port         int     `json:"port"`
	DisplayName  string  `json:"display_name"`
	RCONPassword *string `json:"rcon_password"`
	PublicServer bool    `json:"public_server"`
}

type updateServerRequest struct {
	ServerID          int64   `json:"server_id"`
	UserID            *int64  `json:"user_id"`
	IPString          *string `json:"ip_string"`
	Port              *int    `json:"port"`
	DisplayName       *string `json:"display_name"`
	RCONPassword      *string `json:"rcon_password"`
	ClearRCONPassword bool    `json:"clear_rcon_password"`
	PublicServer      *bool   `json:"public_server"`
}

type deleteServerRequest struct {
	ServerID int64 `json:"server_id"`
}

type createTeamRequest struct {
	Name       string    `json:"name"`
	Flag       string    `json:"flag"`
	Logo       string    `json:"logo"`
	Tag        string    `json:"tag"`
	PublicTeam bool      `json:"public_team"`
	AuthName   authNames `json:"auth_name"`
}

type updateTeamRequest struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"user_id"`
	Name       *string   `json:"name"`
	Flag       *string   `json:"flag"`
	Logo       *string   `json:"logo"`
	Tag        *string   `json:"tag"`
	PublicTeam *bool     `json:"public_team"`
	AuthName   authNames `json:"auth_name"`
}

type deleteTeamRequest struct {
	TeamID  int64  `json:"team_id"`
	SteamID string `json:"steam_id"`
}

type logoRequest struct {
	Filename string `json:"filename"`
}

func requireID(id int64, field string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s is required", common.ErrorValidation, field)
	}
	return nil
}
