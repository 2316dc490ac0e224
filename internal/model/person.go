// internal/model/person.go
package model

type Person struct {
	ID        string `db:"id" json:"id"`
	Phone     string `db:"phone" json:"phone"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Name      string `db:"name" json:"name"`
	Hash      string `db:"hash" json:"hash"`
	Blocked   bool   `db:"blocked" json:"blocked"`
}

// FullName prefers first/last name and falls back to the legacy name column.
func (p *Person) FullName() string {
	if p.FirstName != "" || p.LastName != "" {
		full := p.FirstName
		if p.LastName != "" {
			if full != "" {
				full += " "
			}
			full += p.LastName
		}
		return full
	}
	return p.Name
}
