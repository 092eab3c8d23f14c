package entity

import "time"

type Book struct {
	ID      int64      `json:"id"`
	Author  string     `json:"author"`
	Name    string     `json:"name"`
	Status  Status     `json:"status"`
	RegDate time.Time  `json:"reg_date"`
	ModDate *time.Time `json:"mod_date,omitempty"`
}

// Status is the physical condition of a book.
type Status string

const (
	StatusGood   Status = "good"
	StatusDamage Status = "damage"
	StatusLost   Status = "lost"
)

func (s Status) Valid() bool {
	switch s {
	case StatusGood, StatusDamage, StatusLost:
		return true
	}
	return false
}
