package policy

import (
	"context"

	"github.com/wardstockhq/wardstock-backend/pkg/enums"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
	"github.com/wardstockhq/wardstock-backend/pkg/models"
)

// Wildcard grants every platform-authenticated user admin capability when
// present anywhere in the allow-list.
const Wildcard = "ALL"

// Decision explains an access evaluation. The two denial reasons need
// different corrective actions: wrong mode means "log in with the
// platform", not listed means "ask an admin to add you".
type Decision string

const (
	DecisionAllowed         Decision = "ALLOWED"
	DecisionDeniedWrongMode Decision = "DENIED_WRONG_MODE"
	DecisionDeniedNotListed Decision = "DENIED_NOT_LISTED"
)

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d == DecisionAllowed
}

// HasAccess reports whether the identity may use admin capabilities.
// Only platform logins qualify; a self-asserted manual name never does,
// no matter what the allow-list contains.
func HasAccess(identity models.Identity, allowList []string) bool {
	return Evaluate(identity, allowList).Allowed()
}

// Evaluate applies the allow-list rule and reports why it failed.
func Evaluate(identity models.Identity, allowList []string) Decision {
	if identity.LoginMode != enums.LoginModePlatform || identity.DisplayName == "" {
		return DecisionDeniedWrongMode
	}
	for _, entry := range allowList {
		if entry == Wildcard || entry == identity.DisplayName {
			return DecisionAllowed
		}
	}
	return DecisionDeniedNotListed
}

// AllowListFetcher supplies the current allow-list. The read gateway
// satisfies this.
type AllowListFetcher interface {
	FetchAllowList(ctx context.Context) ([]string, error)
}

// Guard evaluates admin access with a fresh allow-list per call. No list
// is cached between calls; a privileged request always sees the sheet's
// current contents.
type Guard struct {
	fetcher AllowListFetcher
	logg    *logger.Logger
}

// NewGuard builds a Guard over the allow-list source.
func NewGuard(fetcher AllowListFetcher, logg *logger.Logger) *Guard {
	return &Guard{fetcher: fetcher, logg: logg}
}

// Check fetches the allow-list and evaluates the identity. A fetch
// failure is treated as an empty list, so errors fail closed.
func (g *Guard) Check(ctx context.Context, identity models.Identity) Decision {
	allowList, err := g.fetcher.FetchAllowList(ctx)
	if err != nil {
		g.logg.Error(ctx, "allow-list fetch failed, denying access", err)
		allowList = nil
	}
	return Evaluate(identity, allowList)
}
