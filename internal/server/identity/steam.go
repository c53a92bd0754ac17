package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SteamResolver resolves identities offline where possible and falls back to
// the Steam Web API for vanity names and profile data. Responses are cached.
//
// Without an API key only the offline formats resolve, and lookups return
// empty strings.
type SteamResolver struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	vanity  *expirable.LRU[string, string]
	players *expirable.LRU[string, playerSummary]
}

type playerSummary struct {
	SteamID     string `json:"steamid"`
	PersonaName string `json:"personaname"`
	AvatarFull  string `json:"avatarfull"`
}

func NewSteamResolver(baseURL, apiKey string, timeout, cacheTTL time.Duration, cacheSize int) *SteamResolver {
	return &SteamResolver{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: timeout,
		},
		vanity:  expirable.NewLRU[string, string](cacheSize, nil, cacheTTL),
		players: expirable.NewLRU[string, playerSummary](cacheSize, nil, cacheTTL),
	}
}

func (r *SteamResolver) ResolveCanonicalIdentity(ctx context.Context, raw string) (string, error) {
	in, err := parseSteamInput(raw)
	if err != nil {
		return "", err
	}
	if in.id64 != "" {
		return in.id64, nil
	}
	return r.resolveVanity(ctx, in.vanity)
}

func (r *SteamResolver) LookupDisplayName(ctx context.Context, canonical string) (string, error) {
	p, err := r.player(ctx, canonical)
	return p.PersonaName, err
}

func (r *SteamResolver) LookupAvatar(ctx context.Context, canonical string) (string, error) {
	p, err := r.player(ctx, canonical)
	return p.AvatarFull, err
}

func (r *SteamResolver) resolveVanity(ctx context.Context, name string) (string, error) {
	key := strings.ToLower(name)
	if id, ok := r.vanity.Get(key); ok {
		return id, nil
	}
	if r.APIKey == "" {
		return "", fmt.Errorf("%w: vanity names need a Steam API key", common.ErrIdentityLookupFailed)
	}

	var out struct {
		Response struct {
			SteamID string `json:"steamid"`
			Success int    `json:"success"`
		} `json:"response"`
	}
	q := url.Values{"key": {r.APIKey}, "vanityurl": {name}}
	if err := r.get(ctx, "/ISteamUser/ResolveVanityURL/v0001/", q, &out); err != nil {
		return "", err
	}
	if out.Response.Success != 1 || !isSteamID64(out.Response.SteamID) {
		return "", fmt.Errorf("%w: unknown vanity name", common.ErrorValidation)
	}

	r.vanity.Add(key, out.Response.SteamID)
	return out.Response.SteamID, nil
}

func (r *SteamResolver) player(ctx context.Context, id64 string) (playerSummary, error) {
	if p, ok := r.players.Get(id64); ok {
		return p, nil
	}
	if r.APIKey == "" {
		return playerSummary{}, nil
	}

	var out struct {
		Response struct {
			Players []playerSummary `json:"players"`
		} `json:"response"`
	}
	q := url.Values{"key": {r.APIKey}, "steamids": {id64}}
	if err := r.get(ctx, "/ISteamUser/GetPlayerSummaries/v0002/", q, &out); err != nil {
		return playerSummary{}, err
	}

	var p playerSummary
	for _, candidate := range out.Response.Players {
		if candidate.SteamID == id64 {
			p = candidate
			break
		}
	}
	r.players.Add(id64, p)
	return p, nil
}

func (r *SteamResolver) get(ctx context.Context, path string, q url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrIdentityLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		// the error string carries the URL, which includes the API key
		return fmt.Errorf("%w: request %s failed", common.ErrIdentityLookupFailed, path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", common.ErrIdentityLookupFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", common.ErrIdentityLookupFailed, path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", common.ErrIdentityLookupFailed, path, err)
	}
	return nil
}
