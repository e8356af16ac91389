package selection

import "strings"

// ParsePlatformPolicy maps user input to a game version policy:
// "stable" and "snapshot" (case-insensitive) are keywords, anything else is
// an explicit, case-sensitive version id. Empty input means stable.
func ParsePlatformPolicy(s string) Policy {
	return parse(s, "snapshot")
}

// ParseLoaderPolicy maps user input to a loader version policy:
// "stable" and "beta" (case-insensitive) are keywords, anything else is an
// explicit semver string. Empty input means stable.
func ParseLoaderPolicy(s string) Policy {
	return parse(s, "beta")
}

func parse(s, preReleaseKeyword string) Policy {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "stable":
		return Policy{Kind: Stable}
	case preReleaseKeyword:
		return Policy{Kind: PreRelease}
	default:
		return ExplicitPolicy(s)
	}
}
