package riot

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Resource kinds, also the first segment of every cache fingerprint.
const (
	KindSummoner = "summoner"
	KindLeague   = "league"
	KindMastery  = "mastery"
)

// Default endpoint path templates. Placeholders are resolved by
// resolveTemplate; path parameter values are escaped.
const (
	DefaultBaseURLTemplate  = "https://{region}.api.riotgames.com"
	DefaultSummonerEndpoint = "/lol/summoner/v4/summoners/by-name/{name}"
	DefaultLeagueEndpoint   = "/lol/league/v4/entries/by-summoner/{summonerId}"
	DefaultMasteryEndpoint  = "/lol/champion-mastery/v4/champion-masteries/by-summoner/{summonerId}"
)

// Endpoints maps resource kind to its path template.
type Endpoints map[string]string

// DefaultEndpoints returns the standard Riot API path templates.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		KindSummoner: DefaultSummonerEndpoint,
		KindLeague:   DefaultLeagueEndpoint,
		KindMastery:  DefaultMasteryEndpoint,
	}
}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9]+)\}`)

// resolveTemplate substitutes every {placeholder} in template from params.
// A placeholder without a matching param is an error, never a silent no-op.
func resolveTemplate(template string, params map[string]string, escape bool) (string, error) {
	var missing []string
	resolved := placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := params[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		if escape {
			return url.PathEscape(v)
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unresolved placeholders %s in template %q", strings.Join(missing, ", "), template)
	}
	return resolved, nil
}
