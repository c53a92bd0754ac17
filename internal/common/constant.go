package common

// AccessTokenHeaderName is the legacy header carrying the access token when
// the Authorization header is not used.
const AccessTokenHeaderName = "x-api-key"

// RemovedTeamName is shown in place of an opponent whose team record no
// longer exists.
const RemovedTeamName = "Team Removed From Match"
