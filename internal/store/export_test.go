package store

import "database/sql"

// SetOrderHeaderHook installs fn to run right after PlaceOrder inserts the header.
func (s *Store) SetOrderHeaderHook(fn func(tx *sql.Tx, orderID int64) error) {
	s.onOrderHeader = fn
}
