package repository

import (
	"database/sql"
)

type AdminRepositoryInterface interface {
	GetAdminLevel(userID string) (int, bool, error)
}

// AdminRepository checks the admin-roles table for a resolved user.
type AdminRepository struct {
	DB *sql.DB
}

// GetAdminLevel returns the active admin level for a user, or false when the
// user holds no active admin row.
func (r *AdminRepository) GetAdminLevel(userID string) (int, bool, error) {
	row := r.DB.QueryRow(`
        SELECT level FROM admin_users
        WHERE user_id = $1 AND active = TRUE
    `, userID)
	var level int
	if err := row.Scan(&level); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	return level, true, nil
}

var _ AdminRepositoryInterface = (*AdminRepository)(nil)
