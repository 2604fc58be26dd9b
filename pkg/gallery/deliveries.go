package gallery

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// Delivery is one recorded send attempt.
type Delivery struct {
	Photo   string    `json:"photo"`
	Channel string    `json:"channel"`
	Target  string    `json:"target,omitempty"`
	OK      bool      `json:"ok"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// RecordDelivery logs the outcome of sending the photo at path over channel.
func (s *Store) RecordDelivery(ctx context.Context, path, channel, target string, sendErr error) error {
	msg := ""
	if sendErr != nil {
		msg = sendErr.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries (photo_name, channel, target, ok, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		filepath.Base(path), channel, target, sendErr == nil, msg, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("recording delivery: %w", err)
	}
	return nil
}

// Deliveries returns the send history of a photo, oldest first.
func (s *Store) Deliveries(ctx context.Context, name string) ([]Delivery, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT photo_name, channel, COALESCE(target, ''), ok, COALESCE(message, ''), created_at
		 FROM deliveries WHERE photo_name = ? ORDER BY id`, name)
	if err != nil {
		return nil, fmt.Errorf("reading deliveries: %w", err)
	}
	defer rows.Close()

	out := []Delivery{}
	for rows.Next() {
		var d Delivery
		var at int64
		if err := rows.Scan(&d.Photo, &d.Channel, &d.Target, &d.OK, &d.Message, &at); err != nil {
			return nil, err
		}
		d.At = time.UnixMilli(at)
		out = append(out, d)
	}
	return out, rows.Err()
}

// RecentRecipients returns up to n distinct addresses that received a photo by email,
// most recent first. The preview screen offers them so guests don't retype.
func (s *Store) RecentRecipients(ctx context.Context, n int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT target FROM deliveries
		 WHERE channel = 'email' AND ok = 1 AND target <> ''
		 GROUP BY target ORDER BY MAX(id) DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("reading recipients: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
