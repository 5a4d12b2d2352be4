package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Beerzinss/DatKomp/internal/models"
)

const productColumns = `p.id, p.name, COALESCE(p.description, ''), p.price, p.stock_qty, COALESCE(p.image_url, '')`

// ProductFilter narrows the public catalog. Specs maps a spec key to the
// accepted values; a product must match every key and any of its values.
type ProductFilter struct {
	Category string
	Specs    map[string][]string
	Page     int
	PageSize int
}

func scanProduct(row interface{ Scan(...any) error }) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQty, &p.ImageURL)
	return p, err
}

func (f ProductFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Category != "" {
		clauses = append(clauses, `EXISTS (SELECT 1 FROM product_category pc JOIN category c ON c.id = pc.category_id
			WHERE pc.product_id = p.id AND c.name = ?)`)
		args = append(args, f.Category)
	}

	keys := make([]string, 0, len(f.Specs))
	for k, vals := range f.Specs {
		if len(vals) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys) // stable SQL text for the same filter

	for _, k := range keys {
		vals := f.Specs[k]
		clauses = append(clauses, `EXISTS (SELECT 1 FROM product_spec ps
			WHERE ps.product_id = p.id AND ps.spec_key = ? AND ps.spec_value IN (`+placeholders(len(vals))+`))`)
		args = append(args, k)
		for _, v := range vals {
			args = append(args, v)
		}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// ListProducts returns one page of the filtered catalog and the total number of matches.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, int, error) {
	if f.PageSize <= 0 {
		f.PageSize = 12
	}
	if f.Page < 1 {
		f.Page = 1
	}
	where, args := f.where()

	var total int
	if err := s.queryRow(ctx, s.DB, `SELECT COUNT(*) FROM product p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	// a page past the end shows the last page and keeps the OFFSET from overflowing
	if last := max(1, (total+f.PageSize-1)/f.PageSize); f.Page > last {
		f.Page = last
	}

	query := `SELECT ` + productColumns + ` FROM product p` + where + ` ORDER BY p.id LIMIT ? OFFSET ?`
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	rows, err := s.query(ctx, s.DB, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// GetAllProducts lists every product for the admin panel.
func (s *Store) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.query(ctx, s.DB, `SELECT `+productColumns+` FROM product p ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(s.queryRow(ctx, s.DB, `SELECT `+productColumns+` FROM product p WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	id, err := s.insertID(ctx, s.DB, `INSERT INTO product (name, description, price, stock_qty, image_url)
		VALUES (?, ?, ?, ?, ?)`, p.Name, nullString(p.Description), p.Price, p.StockQty, nullString(p.ImageURL))
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	p.ID = id
	return nil
}

// UpdateProduct saves the editable fields. An empty ImageURL keeps the current image.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	res, err := s.exec(ctx, s.DB, `UPDATE product
		SET name = ?, description = ?, price = ?, stock_qty = ?, image_url = COALESCE(?, image_url)
		WHERE id = ?`, p.Name, nullString(p.Description), p.Price, p.StockQty, nullString(p.ImageURL), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ID, err)
	}
	return affectedOne(res)
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, s.DB, `DELETE FROM product WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return affectedOne(res)
}

func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.query(ctx, s.DB, `SELECT id, name FROM category ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCategories(rows)
}

func (s *Store) GetCategoriesForProduct(ctx context.Context, productID int64) ([]models.Category, error) {
	rows, err := s.query(ctx, s.DB, `SELECT c.id, c.name FROM category c
		JOIN product_category pc ON pc.category_id = c.id
		WHERE pc.product_id = ? ORDER BY c.name`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCategories(rows)
}

func scanCategories(rows *sql.Rows) ([]models.Category, error) {
	var list []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (s *Store) CreateCategory(ctx context.Context, name string) (int64, error) {
	var exists int
	err := s.queryRow(ctx, s.DB, `SELECT 1 FROM category WHERE LOWER(name) = LOWER(?)`, name).Scan(&exists)
	switch {
	case err == nil:
		return 0, ErrCategoryExists
	case !errors.Is(err, sql.ErrNoRows):
		return 0, err
	}
	id, err := s.insertID(ctx, s.DB, `INSERT INTO category (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create category: %w", err)
	}
	return id, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, s.DB, `DELETE FROM category WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	return affectedOne(res)
}

// ReplaceProductCategories swaps the product's category set in one transaction.
func (s *Store) ReplaceProductCategories(ctx context.Context, productID int64, categoryIDs []int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, `DELETE FROM product_category WHERE product_id = ?`, productID); err != nil {
			return fmt.Errorf("failed to clear categories: %w", err)
		}
		seen := make(map[int64]bool, len(categoryIDs))
		for _, cid := range categoryIDs {
			if seen[cid] {
				continue
			}
			seen[cid] = true
			if _, err := s.exec(ctx, tx, `INSERT INTO product_category (product_id, category_id) VALUES (?, ?)`, productID, cid); err != nil {
				return fmt.Errorf("failed to link category %d: %w", cid, err)
			}
		}
		return nil
	})
}

func (s *Store) GetSpecs(ctx context.Context, productID int64) ([]models.ProductSpec, error) {
	rows, err := s.query(ctx, s.DB, `SELECT id, product_id, spec_key, spec_value, COALESCE(unit, '')
		FROM product_spec WHERE product_id = ? ORDER BY id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var specs []models.ProductSpec
	for rows.Next() {
		var sp models.ProductSpec
		if err := rows.Scan(&sp.ID, &sp.ProductID, &sp.Key, &sp.Value, &sp.Unit); err != nil {
			return nil, err
		}
		specs = append(specs, sp)
	}
	return specs, rows.Err()
}

// ReplaceProductSpecs rewrites the product's specs. Rows without a key or value are dropped.
func (s *Store) ReplaceProductSpecs(ctx context.Context, productID int64, specs []models.ProductSpec) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, `DELETE FROM product_spec WHERE product_id = ?`, productID); err != nil {
			return fmt.Errorf("failed to clear specs: %w", err)
		}
		for _, sp := range specs {
			key, value := strings.TrimSpace(sp.Key), strings.TrimSpace(sp.Value)
			if key == "" || value == "" {
				continue
			}
			if _, err := s.exec(ctx, tx, `INSERT INTO product_spec (product_id, spec_key, spec_value, unit) VALUES (?, ?, ?, ?)`,
				productID, key, value, nullString(strings.TrimSpace(sp.Unit))); err != nil {
				return fmt.Errorf("failed to insert spec %q: %w", key, err)
			}
		}
		return nil
	})
}

// SpecFilterGroups lists the distinct spec values, optionally limited to one category.
func (s *Store) SpecFilterGroups(ctx context.Context, category string) ([]models.SpecFilterGroup, error) {
	query := `SELECT DISTINCT ps.spec_key, ps.spec_value FROM product_spec ps`
	var args []any
	if category != "" {
		query += ` JOIN product_category pc ON pc.product_id = ps.product_id
			JOIN category c ON c.id = pc.category_id WHERE c.name = ?`
		args = append(args, category)
	}
	query += ` ORDER BY ps.spec_key, ps.spec_value`

	rows, err := s.query(ctx, s.DB, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.SpecFilterGroup
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		if n := len(groups); n == 0 || groups[n-1].Key != key {
			groups = append(groups, models.SpecFilterGroup{Key: key})
		}
		g := &groups[len(groups)-1]
		g.Values = append(g.Values, value)
	}
	return groups, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
