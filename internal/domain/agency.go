package domain

import "time"

// Agency is a partner agency. AGENCY_* staff and agency clients belong to one.
type Agency struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
