package domain

import "time"

// Group is a named permission bundle. Names are unique.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupSpec describes the group new persons are placed in.
type GroupSpec struct {
	Name        string
	Permissions []string
}
