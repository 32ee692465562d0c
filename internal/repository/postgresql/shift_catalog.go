package postgresql

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftCatalogRepositoryImpl struct {
	db *database.DB
}

func NewShiftCatalogRepository(db *database.DB) roster.ShiftCatalogRepository {
	return &shiftCatalogRepositoryImpl{db: db}
}

// ListShiftCatalog implements roster.ShiftCatalogRepository.
func (r *shiftCatalogRepositoryImpl) ListShiftCatalog(ctx context.Context, orgID string, activeOnly bool) ([]roster.ShiftType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT code, org_id, label, default_hours, active, category
		FROM shift_types
		WHERE org_id = $1 AND ($2 = FALSE OR active = TRUE)
		ORDER BY code
	`
	rows, err := q.Query(ctx, query, orgID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []roster.ShiftType
	for rows.Next() {
		var st roster.ShiftType
		if err := rows.Scan(&st.Code, &st.OrgID, &st.Label, &st.DefaultHours, &st.Active, &st.Category); err != nil {
			return nil, err
		}
		types = append(types, st)
	}
	return types, rows.Err()
}

// GetByCode implements roster.ShiftCatalogRepository.
func (r *shiftCatalogRepositoryImpl) GetByCode(ctx context.Context, orgID, code string) (roster.ShiftType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT code, org_id, label, default_hours, active, category
		FROM shift_types
		WHERE org_id = $1 AND code = $2
	`
	var st roster.ShiftType
	err := q.QueryRow(ctx, query, orgID, code).Scan(&st.Code, &st.OrgID, &st.Label, &st.DefaultHours, &st.Active, &st.Category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return roster.ShiftType{}, roster.ErrShiftTypeNotFound
		}
		return roster.ShiftType{}, err
	}
	return st, nil
}
