package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Beerzinss/DatKomp/internal/models"
)

func (s *Store) CreateMessage(ctx context.Context, m *models.ContactMessage) error {
	m.CreatedAt = time.Now().UTC()
	id, err := s.insertID(ctx, s.DB, `INSERT INTO contact_message (user_id, email, content, created_at_utc, is_read)
		VALUES (?, ?, ?, ?, ?)`, m.UserID, nullString(m.Email), m.Content, m.CreatedAt, false)
	if err != nil {
		return fmt.Errorf("failed to save contact message: %w", err)
	}
	m.ID = id
	return nil
}

// GetMessages lists contact messages newest first with the sender's name.
func (s *Store) GetMessages(ctx context.Context) ([]models.ContactMessage, error) {
	rows, err := s.query(ctx, s.DB, `SELECT m.id, m.user_id, u.first_name || ' ' || u.last_name, COALESCE(m.email, ''),
			m.content, m.created_at_utc, m.is_read
		FROM contact_message m
		JOIN app_user u ON u.id = m.user_id
		ORDER BY m.created_at_utc DESC, m.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.ContactMessage
	for rows.Next() {
		var m models.ContactMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.SenderName, &m.Email, &m.Content, &m.CreatedAt, &m.IsRead); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (s *Store) MarkMessageRead(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, s.DB, `UPDATE contact_message SET is_read = ? WHERE id = ?`, true, id)
	if err != nil {
		return fmt.Errorf("failed to mark message %d read: %w", id, err)
	}
	return affectedOne(res)
}
