package identity

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
)

// steamID64Base is the SteamID64 of account number 0 in the public universe.
const steamID64Base uint64 = 76561197960265728

var (
	reDigits17 = regexp.MustCompile(`^\d{17}$`)
	reSteam2   = regexp.MustCompile(`^STEAM_[0-5]:([01]):(\d{1,10})$`)
	reSteam3   = regexp.MustCompile(`^\[U:1:(\d{1,10})\]$`)
	reVanity   = regexp.MustCompile(`^[A-Za-z0-9_-]{2,32}$`)
)

// steamInput is the offline interpretation of a raw identity: either a
// SteamID64 or a vanity name that needs the Web API.
type steamInput struct {
	id64   string
	vanity string
}

// isSteamID64 reports whether s is the SteamID64 of an individual account in
// the public universe: the base plus a 32-bit account number.
func isSteamID64(s string) bool {
	if !reDigits17.MatchString(s) {
		return false
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v < steamID64Base {
		return false
	}
	return v-steamID64Base <= math.MaxUint32
}

func fromAccount(account uint64) (steamInput, error) {
	if account > math.MaxUint32 {
		return steamInput{}, common.ErrorValidation
	}
	return steamInput{id64: strconv.FormatUint(steamID64Base+account, 10)}, nil
}

func parseSteamInput(raw string) (steamInput, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return steamInput{}, common.ErrorValidation
	}

	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return parseProfileURL(s)
	}

	if isSteamID64(s) {
		return steamInput{id64: s}, nil
	}
	if m := reSteam2.FindStringSubmatch(strings.ToUpper(s)); m != nil {
		y, _ := strconv.ParseUint(m[1], 10, 64)
		z, err := strconv.ParseUint(m[2], 10, 32)
		if err != nil {
			return steamInput{}, common.ErrorValidation
		}
		return fromAccount(z*2 + y)
	}
	if m := reSteam3.FindStringSubmatch(strings.ToUpper(s)); m != nil {
		w, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			return steamInput{}, common.ErrorValidation
		}
		return fromAccount(w)
	}
	if reVanity.MatchString(s) {
		return steamInput{vanity: s}, nil
	}
	return steamInput{}, common.ErrorValidation
}

// parseProfileURL accepts steamcommunity.com/profiles/<id64> and
// steamcommunity.com/id/<vanity>.
func parseProfileURL(s string) (steamInput, error) {
	u, err := url.Parse(s)
	if err != nil || !strings.HasSuffix(strings.ToLower(u.Hostname()), "steamcommunity.com") {
		return steamInput{}, common.ErrorValidation
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 {
		return steamInput{}, common.ErrorValidation
	}
	switch parts[0] {
	case "profiles":
		if isSteamID64(parts[1]) {
			return steamInput{id64: parts[1]}, nil
		}
	case "id":
		if reVanity.MatchString(parts[1]) {
			return steamInput{vanity: parts[1]}, nil
		}
	}
	return steamInput{}, common.ErrorValidation
}
