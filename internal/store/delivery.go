package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/Beerzinss/DatKomp/internal/models"
)

const deliveryColumns = `id, name, COALESCE(description, ''), price, is_active`

func (s *Store) scanDeliveryTypes(ctx context.Context, query string, args ...any) ([]models.DeliveryType, error) {
	rows, err := s.query(ctx, s.DB, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.DeliveryType
	for rows.Next() {
		var d models.DeliveryType
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Price, &d.IsActive); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// GetActiveDeliveryTypes lists what checkout offers, cheapest first.
func (s *Store) GetActiveDeliveryTypes(ctx context.Context) ([]models.DeliveryType, error) {
	list, err := s.scanDeliveryTypes(ctx, `SELECT `+deliveryColumns+` FROM delivery_type WHERE is_active = ? ORDER BY id`, true)
	if err != nil {
		return nil, err
	}
	// price is TEXT under sqlite, so order numerically here
	sort.SliceStable(list, func(i, j int) bool { return list[i].Price.LessThan(list[j].Price) })
	return list, nil
}

func (s *Store) GetAllDeliveryTypes(ctx context.Context) ([]models.DeliveryType, error) {
	return s.scanDeliveryTypes(ctx, `SELECT `+deliveryColumns+` FROM delivery_type ORDER BY id`)
}

func (s *Store) GetDeliveryType(ctx context.Context, id int64) (*models.DeliveryType, error) {
	list, err := s.scanDeliveryTypes(ctx, `SELECT `+deliveryColumns+` FROM delivery_type WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

func (s *Store) CreateDeliveryType(ctx context.Context, d *models.DeliveryType) error {
	id, err := s.insertID(ctx, s.DB, `INSERT INTO delivery_type (name, description, price, is_active) VALUES (?, ?, ?, ?)`,
		d.Name, nullString(d.Description), d.Price, d.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create delivery type: %w", err)
	}
	d.ID = id
	return nil
}

func (s *Store) UpdateDeliveryType(ctx context.Context, d *models.DeliveryType) error {
	res, err := s.exec(ctx, s.DB, `UPDATE delivery_type SET name = ?, description = ?, price = ?, is_active = ? WHERE id = ?`,
		d.Name, nullString(d.Description), d.Price, d.IsActive, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update delivery type %d: %w", d.ID, err)
	}
	return affectedOne(res)
}

// DeleteDeliveryType refuses to remove a type that existing orders point at.
func (s *Store) DeleteDeliveryType(ctx context.Context, id int64) error {
	var one int
	err := s.queryRow(ctx, s.DB, `SELECT 1 FROM orders WHERE delivery_type_id = ? LIMIT 1`, id).Scan(&one)
	if err == nil {
		return ErrDeliveryTypeInUse
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	res, err := s.exec(ctx, s.DB, `DELETE FROM delivery_type WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete delivery type %d: %w", id, err)
	}
	return affectedOne(res)
}
