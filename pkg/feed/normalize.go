package feed

import (
	"strings"

	"grundctl/pkg/quality"
)

// The export carries free-form attribute values; normalization maps them into
// the closed scoring domain. Missing attributes map to the weakest value so
// that absent information never inflates a score.

// PermitStatusFrom maps a constructible-type phrase to a permit status.
func PermitStatusFrom(val string) quality.PermitStatus {
	v := strings.ToLower(strings.TrimSpace(val))

	switch {
	case v == "":
		return quality.PermitNone
	case strings.Contains(v, "permission") || strings.Contains(v, "genehmigung"):
		return quality.PermitApproved
	case strings.Contains(v, "preliminary") || strings.Contains(v, "vorbescheid"):
		return quality.PermitPreliminary
	case strings.Contains(v, "construction plan") || strings.Contains(v, "bebauungsplan"):
		return quality.PermitPreliminary
	case strings.Contains(v, "like neighbour") || strings.Contains(v, "like neighbor"):
		return quality.PermitPreliminary
	default:
		return quality.PermitNone
	}
}

// UtilityConnectionFrom maps a development-status phrase to a utility
// connection state.
func UtilityConnectionFrom(val string) quality.UtilityConnection {
	v := strings.ToLower(strings.TrimSpace(val))

	switch {
	case v == "":
		return quality.UtilityNone
	case strings.Contains(v, "not developed") || strings.Contains(v, "undeveloped"):
		return quality.UtilityNone
	case strings.Contains(v, "partial"):
		return quality.UtilityPartial
	case strings.Contains(v, "developed"):
		return quality.UtilityFull
	default:
		return quality.UtilityPartial
	}
}

// IsYes reports whether a feed flag value means yes.
func IsYes(val string) bool {
	return strings.EqualFold(strings.TrimSpace(val), "yes")
}

// Criteria normalizes the record's raw attributes into scoring criteria.
func (r *Record) Criteria() quality.Criteria {
	return quality.Criteria{
		Permit:             PermitStatusFrom(r.Constructible),
		Utility:            UtilityConnectionFrom(r.Development),
		ShortTermBuildable: IsYes(r.ShortTerm),
		DemolitionRequired: IsYes(r.Demolition),
	}
}
