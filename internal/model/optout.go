// internal/model/optout.go
package model

import "time"

// OptOut marks a phone number as having withdrawn marketing consent. Rows
// are written by the inbound webhook handler and only ever read here.
type OptOut struct {
	Phone      string    `db:"phone" json:"phone"`
	Source     string    `db:"source" json:"source"`
	OptedOutAt time.Time `db:"opted_out_at" json:"opted_out_at"`
	Active     bool      `db:"active" json:"active"`
}
