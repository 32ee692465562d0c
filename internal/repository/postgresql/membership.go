package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// MembershipRepository is a read-only adapter over the portal's membership
// tables. It serves both membership.Resolver and membership.Directory.
type MembershipRepository struct {
	db *database.DB
}

func NewMembershipRepository(db *database.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

var (
	_ membership.Resolver  = (*MembershipRepository)(nil)
	_ membership.Directory = (*MembershipRepository)(nil)
)

// ResolveEffectiveRole implements membership.Resolver. The strongest role wins.
func (r *MembershipRepository) ResolveEffectiveRole(ctx context.Context, userID string) (membership.Role, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT role
		FROM memberships
		WHERE user_id = $1
		ORDER BY CASE role
			WHEN 'ADMIN' THEN 0
			WHEN 'COMPANY_ADMIN' THEN 1
			WHEN 'SITE_SUPERVISOR' THEN 2
			ELSE 3
		END
		LIMIT 1
	`
	var role membership.Role
	if err := q.QueryRow(ctx, query, userID).Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", membership.ErrMembershipNotFound
		}
		return "", err
	}
	return role, nil
}

// ResolveSiteScope implements membership.Resolver. Company admins see every
// site of their organisation; others see the sites they are members of.
func (r *MembershipRepository) ResolveSiteScope(ctx context.Context, userID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT s.id
		FROM sites s
		INNER JOIN memberships m ON m.org_id = s.org_id AND m.user_id = $1
		WHERE m.role IN ('ADMIN', 'COMPANY_ADMIN')
			OR EXISTS (
				SELECT 1 FROM site_memberships sm
				WHERE sm.user_id = $1 AND sm.site_id = s.id
			)
		ORDER BY s.id
	`
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var siteIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		siteIDs = append(siteIDs, id)
	}
	return siteIDs, rows.Err()
}

// ResolveWorkerClassification implements membership.Resolver.
func (r *MembershipRepository) ResolveWorkerClassification(ctx context.Context, workerID string, month time.Time) (membership.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT w.id, a.site_id
		FROM workers w
		LEFT JOIN LATERAL (
			SELECT wa.site_id
			FROM worker_assignments wa
			WHERE wa.worker_id = w.id
				AND wa.effective_from <= $2
				AND (wa.effective_to IS NULL OR wa.effective_to >= $2)
			ORDER BY wa.effective_from DESC
			LIMIT 1
		) a ON TRUE
		WHERE w.id = $1
	`
	var (
		id     string
		siteID *string
	)
	if err := q.QueryRow(ctx, query, workerID, month).Scan(&id, &siteID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, membership.ErrWorkerNotFound
		}
		return nil, err
	}
	if siteID == nil {
		return membership.Floating{}, nil
	}
	return membership.Fixed{SiteID: *siteID}, nil
}

// ResolveAssignment implements membership.Resolver.
func (r *MembershipRepository) ResolveAssignment(ctx context.Context, userID string) (membership.Assignment, error) {
	role, err := r.ResolveEffectiveRole(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch role {
	case membership.RoleAdmin:
		return membership.Admin{}, nil
	case membership.RoleCompanyAdmin, membership.RoleSiteSupervisor:
		q := GetQuerier(ctx, r.db)
		var positions []string
		err := q.QueryRow(ctx, `
			SELECT COALESCE(array_agg(DISTINCT p) FILTER (WHERE p IS NOT NULL), '{}')
			FROM memberships m
			LEFT JOIN LATERAL unnest(m.positions) AS p ON TRUE
			WHERE m.user_id = $1
		`, userID).Scan(&positions)
		if err != nil {
			return nil, fmt.Errorf("load positions: %w", err)
		}
		return membership.CompanyAccess{Positions: positions}, nil
	case membership.RoleWorker:
		q := GetQuerier(ctx, r.db)
		var workerID string
		err := q.QueryRow(ctx, `SELECT id FROM workers WHERE user_id = $1`, userID).Scan(&workerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: worker role without a worker record", membership.ErrMembershipNotFound)
			}
			return nil, err
		}
		now := time.Now().UTC()
		return r.ResolveWorkerClassification(ctx, workerID, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC))
	default:
		return nil, fmt.Errorf("%w: role %q", membership.ErrUnsupportedAssignment, role)
	}
}

// LookupDisplayName implements membership.Directory.
func (r *MembershipRepository) LookupDisplayName(ctx context.Context, workerID string) (string, error) {
	q := GetQuerier(ctx, r.db)

	var name string
	err := q.QueryRow(ctx, `SELECT display_name FROM workers WHERE id = $1`, workerID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", membership.ErrWorkerNotFound
		}
		return "", err
	}
	return name, nil
}

// LookupDisplayNames implements membership.Directory. Unknown ids are absent from the result.
func (r *MembershipRepository) LookupDisplayNames(ctx context.Context, workerIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(workerIDs))
	if len(workerIDs) == 0 {
		return names, nil
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id, display_name FROM workers WHERE id = ANY($1::uuid[])`, workerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// LookupSiteName implements membership.Directory.
func (r *MembershipRepository) LookupSiteName(ctx context.Context, siteID string) (string, error) {
	q := GetQuerier(ctx, r.db)

	var name string
	err := q.QueryRow(ctx, `SELECT name FROM sites WHERE id = $1`, siteID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", membership.ErrSiteNotFound
		}
		return "", err
	}
	return name, nil
}

// GetSiteOrgID implements membership.Directory.
func (r *MembershipRepository) GetSiteOrgID(ctx context.Context, siteID string) (string, error) {
	q := GetQuerier(ctx, r.db)

	var orgID string
	err := q.QueryRow(ctx, `SELECT org_id FROM sites WHERE id = $1`, siteID).Scan(&orgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", membership.ErrSiteNotFound
		}
		return "", err
	}
	return orgID, nil
}

// ListOrgSiteIDs implements membership.Directory.
func (r *MembershipRepository) ListOrgSiteIDs(ctx context.Context, orgID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id FROM sites WHERE org_id = $1 ORDER BY id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
