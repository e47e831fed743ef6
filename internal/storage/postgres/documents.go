package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/storage"
)

// ErrUsernameTaken aliases the storage sentinel for callers of this package.
var ErrUsernameTaken = storage.ErrUsernameTaken

const uniqueViolation = "23505"

func (s *Store) ListDocuments(ctx context.Context, userID string, kind models.Kind) ([]storage.Document, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, body FROM user_documents
		WHERE user_id = $1 AND collection = $2
		ORDER BY doc_id`, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer rows.Close()

	var docs []storage.Document
	for rows.Next() {
		var doc storage.Document
		var body []byte
		if err := rows.Scan(&doc.ID, &body); err != nil {
			return nil, err
		}
		doc.Body = json.RawMessage(body)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Store) ListDocumentIDs(ctx context.Context, userID string, kind models.Kind) ([]string, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id FROM user_documents
		WHERE user_id = $1 AND collection = $2
		ORDER BY doc_id`, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s ids: %w", kind, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) GetProfile(ctx context.Context, userID string) (models.RemoteProfile, bool, error) {
	if s.db == nil {
		return models.RemoteProfile{}, false, storage.ErrNotLoaded
	}
	var body []byte
	err := s.db.QueryRowContext(ctx, "SELECT body FROM user_profiles WHERE user_id = $1", userID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RemoteProfile{}, false, nil
	}
	if err != nil {
		return models.RemoteProfile{}, false, fmt.Errorf("failed to read profile: %w", err)
	}
	var p models.RemoteProfile
	if err := json.Unmarshal(body, &p); err != nil {
		return models.RemoteProfile{}, false, fmt.Errorf("failed to decode profile: %w", err)
	}
	return p, true, nil
}

// PutProfile merges profile into the stored document.
func (s *Store) PutProfile(ctx context.Context, userID string, profile models.RemoteProfile) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	body, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, username, body, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, now(), now())
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    body = user_profiles.body || EXCLUDED.body,
		    updated_at = now()`,
		userID, models.NormalizeUsername(profile.Username), string(body))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

func (s *Store) FindUsersByUsername(ctx context.Context, username string) ([]string, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}
	name := models.NormalizeUsername(username)
	if name == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM user_profiles WHERE lower(username) = $1 ORDER BY user_id", name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up username: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) NewBatch(userID string) storage.Batch {
	return &batch{store: s, userID: userID}
}

// batch commits its operations in one transaction.
type batch struct {
	storage.OpList
	store  *Store
	userID string
}

func (b *batch) Commit(ctx context.Context) error {
	if b.store.db == nil {
		return storage.ErrNotLoaded
	}
	if b.Len() == 0 {
		return nil
	}

	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}

	deletes := map[models.Kind][]string{}
	for _, op := range b.Ops {
		if op.Delete {
			deletes[op.Kind] = append(deletes[op.Kind], op.ID)
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_documents (user_id, collection, doc_id, body, updated_at)
			VALUES ($1, $2, $3, $4::jsonb, now())
			ON CONFLICT (user_id, collection, doc_id) DO UPDATE
			SET body = user_documents.body || EXCLUDED.body,
			    updated_at = now()`,
			b.userID, string(op.Kind), op.ID, string(op.Body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to upsert %s/%s: %w", op.Kind, op.ID, err)
		}
	}

	for kind, ids := range deletes {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM user_documents
			WHERE user_id = $1 AND collection = $2 AND doc_id = ANY($3)`,
			b.userID, string(kind), pq.Array(ids)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to delete %s: %w", kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}
