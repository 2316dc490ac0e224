package repository

import (
	"database/sql"
)

type OptOutRepositoryInterface interface {
	IsOptedOut(phone string) (bool, error)
}

// OptOutRepository reads the opt-out set. Rows are written by the inbound
// webhook handler; this side is read-only.
type OptOutRepository struct {
	DB *sql.DB
}

func (r *OptOutRepository) IsOptedOut(phone string) (bool, error) {
	row := r.DB.QueryRow(`
        SELECT 1 FROM sms_opt_outs
        WHERE phone = $1 AND active = TRUE
        LIMIT 1
    `, phone)
	var tmp int
	if err := row.Scan(&tmp); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var _ OptOutRepositoryInterface = (*OptOutRepository)(nil)
