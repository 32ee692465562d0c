package membership

import (
	"context"
	"time"
)

// Resolver answers role, scope and classification questions owned by the
// portal's membership tables.
type Resolver interface {
	ResolveEffectiveRole(ctx context.Context, userID string) (Role, error)
	ResolveSiteScope(ctx context.Context, userID string) ([]string, error)
	// ResolveWorkerClassification returns Fixed{SiteID} or Floating{} for the month starting at month.
	ResolveWorkerClassification(ctx context.Context, workerID string, month time.Time) (Assignment, error)
	ResolveAssignment(ctx context.Context, userID string) (Assignment, error)
}

// Directory resolves display data for reports
type Directory interface {
	LookupDisplayName(ctx context.Context, workerID string) (string, error)
	LookupDisplayNames(ctx context.Context, workerIDs []string) (map[string]string, error)
	LookupSiteName(ctx context.Context, siteID string) (string, error)
	GetSiteOrgID(ctx context.Context, siteID string) (string, error)
	ListOrgSiteIDs(ctx context.Context, orgID string) ([]string, error)
}
