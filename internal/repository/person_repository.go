package repository

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/artbattle/sms-marketing-backend/internal/model"
)

// MaxIDsPerQuery caps how many ids go into a single IN query. The data
// access layer truncates any response past a fixed row limit, so requests
// must be chunked below it up front.
const MaxIDsPerQuery = 900

// PersonRepositoryInterface defines the contact lookups the pipeline needs.
type PersonRepositoryInterface interface {
	GetByIDs(ids []string) ([]model.Person, error)
	GetByPhone(phone string) (*model.Person, error)
}

type PersonRepository struct {
	DB *sql.DB
}

// GetByIDs resolves person ids to contact records, issuing bounded chunks
// and concatenating the results in request order per chunk.
func (r *PersonRepository) GetByIDs(ids []string) ([]model.Person, error) {
	people := []model.Person{}
	for _, chunk := range chunkIDs(ids, MaxIDsPerQuery) {
		rows, err := r.DB.Query(`
            SELECT id, phone, first_name, last_name, name, hash, blocked
            FROM people
            WHERE id = ANY($1)
        `, pq.Array(chunk))
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var p model.Person
			if err := rows.Scan(&p.ID, &p.Phone, &p.FirstName, &p.LastName, &p.Name, &p.Hash, &p.Blocked); err != nil {
				rows.Close()
				return nil, err
			}
			people = append(people, p)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return people, nil
}

// GetByPhone fetches live contact data for send-time personalization.
func (r *PersonRepository) GetByPhone(phone string) (*model.Person, error) {
	row := r.DB.QueryRow(`
        SELECT id, phone, first_name, last_name, name, hash, blocked
        FROM people
        WHERE phone = $1
        LIMIT 1
    `, phone)

	var p model.Person
	if err := row.Scan(&p.ID, &p.Phone, &p.FirstName, &p.LastName, &p.Name, &p.Hash, &p.Blocked); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &p, nil
}

func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

var _ PersonRepositoryInterface = (*PersonRepository)(nil)
