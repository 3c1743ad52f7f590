package database

import (
	"context"
	"database/sql"
	"errors"

	"discord-lists/models"

	"github.com/samber/oops"
)

const channelBindingColumns = `id, guild_id, channel_id, channel_name, shared_list, enabled`

// FindBinding returns the binding for (guildID, channelID), or nil when the
// channel has never been enabled.
func (s *Store) FindBinding(ctx context.Context, guildID, channelID string) (*models.ChannelBinding, error) {
	query := rebind(s.driver, `SELECT `+channelBindingColumns+` FROM channel_bindings
		WHERE guild_id = ? AND channel_id = ?`)

	var b models.ChannelBinding
	err := s.db.QueryRowContext(ctx, query, guildID, channelID).Scan(
		&b.ID, &b.GuildID, &b.ChannelID, &b.ChannelName, &b.SharedList, &b.Enabled,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.In("database").With("guild_id", guildID, "channel_id", channelID).Wrapf(err, "find channel binding")
	}
	return &b, nil
}

// CreateBinding inserts a binding and assigns its ID. It returns
// models.ErrBindingExists when the (guild, channel) pair is already bound.
func (s *Store) CreateBinding(ctx context.Context, binding *models.ChannelBinding) error {
	return s.insertBinding(ctx, s.db, binding)
}

func (s *Store) insertBinding(ctx context.Context, db DBTX, binding *models.ChannelBinding) error {
	query := rebind(s.driver, `INSERT INTO channel_bindings (guild_id, channel_id, channel_name, shared_list, enabled)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	err := db.QueryRowContext(ctx, query,
		binding.GuildID, binding.ChannelID, binding.ChannelName, binding.SharedList, binding.Enabled,
	).Scan(&id)
	if isUniqueViolation(err) {
		return models.ErrBindingExists
	}
	if err != nil {
		return oops.In("database").
			With("guild_id", binding.GuildID, "channel_id", binding.ChannelID).
			Wrapf(err, "insert channel binding")
	}
	binding.ID = id
	return nil
}

// CreateBoundList creates list and binding in one transaction, pointing the
// binding at the new list. If the channel is already bound nothing is written
// and models.ErrBindingExists is returned.
func (s *Store) CreateBoundList(ctx context.Context, list *models.SharedList, binding *models.ChannelBinding) error {
	newList := *list
	newBinding := *binding

	err := WithTx(ctx, s.db, func(tx DBTX) error {
		if err := s.insertList(ctx, tx, &newList); err != nil {
			return err
		}
		newBinding.SharedList = newList.ID
		return s.insertBinding(ctx, tx, &newBinding)
	})
	if errors.Is(err, models.ErrBindingExists) {
		return models.ErrBindingExists
	}
	if err != nil {
		return oops.In("database").
			With("guild_id", binding.GuildID, "channel_id", binding.ChannelID).
			Wrapf(err, "create bound shared list")
	}

	*list = newList
	*binding = newBinding
	return nil
}

// SetBindingEnabled flips the enabled flag. It reports whether the stored
// value actually changed; setting the current value is a no-op.
func (s *Store) SetBindingEnabled(ctx context.Context, id int64, enabled bool) (bool, error) {
	query := rebind(s.driver, `UPDATE channel_bindings SET enabled = ? WHERE id = ? AND enabled <> ?`)

	res, err := s.db.ExecContext(ctx, query, enabled, id, enabled)
	if err != nil {
		return false, oops.In("database").With("binding_id", id, "enabled", enabled).Wrapf(err, "update channel binding")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, oops.In("database").With("binding_id", id).Wrapf(err, "read rows affected")
	}
	return n > 0, nil
}

// FindEnabledBindings returns every enabled binding in the order the bindings
// were first created.
func (s *Store) FindEnabledBindings(ctx context.Context) ([]models.ChannelBinding, error) {
	query := rebind(s.driver, `SELECT `+channelBindingColumns+` FROM channel_bindings
		WHERE enabled = ? ORDER BY id`)

	rows, err := s.db.QueryContext(ctx, query, true)
	if err != nil {
		return nil, oops.In("database").Wrapf(err, "query enabled channel bindings")
	}
	defer rows.Close()

	var bindings []models.ChannelBinding
	for rows.Next() {
		var b models.ChannelBinding
		if err := rows.Scan(&b.ID, &b.GuildID, &b.ChannelID, &b.ChannelName, &b.SharedList, &b.Enabled); err != nil {
			return nil, oops.In("database").Wrapf(err, "scan channel binding")
		}
		bindings = append(bindings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("database").Wrapf(err, "iterate channel bindings")
	}
	return bindings, nil
}
