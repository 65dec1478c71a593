package store

import "gorm.io/gorm"

// Conn hands out the shared database handle. Satisfied by *database.Pool;
// tests provide a static handle instead.
type Conn interface {
	DB() (*gorm.DB, error)
}
