package entity

import "time"

// Client cliente al que pertenecen los proyectos.
type Client struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   Address
	CIF       string // identificación fiscal del cliente
	CreatedBy string
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Archived indica si el cliente está borrado lógicamente.
func (c *Client) Archived() bool { return c.DeletedAt != nil }
