package database

import (
	"context"
	"database/sql"
	"time"

	"discord-lists/models"

	"github.com/samber/lo"
	"github.com/samber/oops"
)

const sharedListColumns = `id, creator, created_when, updated_when, title, description`

// CreateList inserts a shared list and assigns its ID.
func (s *Store) CreateList(ctx context.Context, list *models.SharedList) error {
	return s.insertList(ctx, s.db, list)
}

func (s *Store) insertList(ctx context.Context, db DBTX, list *models.SharedList) error {
	query := rebind(s.driver, `INSERT INTO shared_lists (creator, created_when, updated_when, title, description)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)

	var description sql.NullString
	if list.Description != nil {
		description = sql.NullString{String: *list.Description, Valid: true}
	}

	var id int64
	err := db.QueryRowContext(ctx, query,
		list.Creator, list.CreatedWhen.UnixMilli(), list.UpdatedWhen.UnixMilli(), list.Title, description,
	).Scan(&id)
	if err != nil {
		return oops.In("database").With("title", list.Title, "creator", list.Creator).Wrapf(err, "insert shared list")
	}
	list.ID = id
	return nil
}

// FindLists returns the shared lists with the given IDs, ordered by ID.
func (s *Store) FindLists(ctx context.Context, ids []int64) ([]models.SharedList, error) {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	query := rebind(s.driver, `SELECT `+sharedListColumns+` FROM shared_lists
		WHERE id IN (`+buildPlaceholders(len(ids))+`) ORDER BY id`)
	args := lo.Map(ids, func(id int64, _ int) interface{} { return id })

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, oops.In("database").With("ids", ids).Wrapf(err, "query shared lists")
	}
	defer rows.Close()
	return scanLists(rows)
}

// FindOrphanedLists returns lists created by creator that no channel binding
// refers to.
func (s *Store) FindOrphanedLists(ctx context.Context, creator string) ([]models.SharedList, error) {
	query := rebind(s.driver, `SELECT `+sharedListColumns+` FROM shared_lists l
		WHERE l.creator = ?
		AND NOT EXISTS (SELECT 1 FROM channel_bindings b WHERE b.shared_list = l.id)
		ORDER BY l.id`)

	rows, err := s.db.QueryContext(ctx, query, creator)
	if err != nil {
		return nil, oops.In("database").With("creator", creator).Wrapf(err, "query orphaned shared lists")
	}
	defer rows.Close()
	return scanLists(rows)
}

func scanLists(rows *sql.Rows) ([]models.SharedList, error) {
	var lists []models.SharedList
	for rows.Next() {
		var (
			l                    models.SharedList
			createdMs, updatedMs int64
			description          sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Creator, &createdMs, &updatedMs, &l.Title, &description); err != nil {
			return nil, oops.In("database").Wrapf(err, "scan shared list")
		}
		l.CreatedWhen = time.UnixMilli(createdMs)
		l.UpdatedWhen = time.UnixMilli(updatedMs)
		if description.Valid {
			l.Description = &description.String
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("database").Wrapf(err, "iterate shared lists")
	}
	return lists, nil
}
