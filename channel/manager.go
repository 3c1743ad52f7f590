// Package channel binds Discord channels to shared lists.
//
// A binding is created the first time a channel is enabled and is never
// deleted; disabling only clears its enabled flag. Uniqueness of the
// (guild, channel) key is enforced by the store, and a lost creation race is
// handled by re-reading the winner's binding.
package channel

import (
	"context"
	"errors"
	"strings"
	"time"

	"discord-lists/models"

	"github.com/samber/lo"
	"github.com/samber/oops"
	"go.uber.org/zap"
)

// Store is the persistence the manager needs.
type Store interface {
	FindBinding(ctx context.Context, guildID, channelID string) (*models.ChannelBinding, error)
	// CreateBoundList atomically creates list and binding, or returns
	// models.ErrBindingExists without writing anything.
	CreateBoundList(ctx context.Context, list *models.SharedList, binding *models.ChannelBinding) error
	SetBindingEnabled(ctx context.Context, id int64, enabled bool) (bool, error)
	FindEnabledBindings(ctx context.Context) ([]models.ChannelBinding, error)
}

// Manager enables, disables and lists channel bindings.
type Manager struct {
	store  Store
	links  LinkFormatter
	logger *zap.Logger
	now    func() time.Time
}

func NewManager(store Store, links LinkFormatter, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:  store,
		links:  links,
		logger: logger.Named("channel"),
		now:    time.Now,
	}
}

// EnableChannel makes sure (guildID, channelID) is bound to a shared list and
// enabled. The first call for a channel creates the list, titled after
// channelName. Changed is false when the channel was already enabled.
func (m *Manager) EnableChannel(ctx context.Context, guildID, channelID, channelName string) (models.EnableResult, error) {
	if err := requireNonEmpty("guild_id", guildID, "channel_id", channelID, "channel_name", channelName); err != nil {
		return models.EnableResult{}, err
	}
	log := m.logger.With(zap.String("guild_id", guildID), zap.String("channel_id", channelID))

	binding, err := m.store.FindBinding(ctx, guildID, channelID)
	if err != nil {
		return models.EnableResult{}, err
	}

	if binding == nil {
		binding, err = m.createBinding(ctx, guildID, channelID, channelName)
		if err == nil {
			log.Info("channel enabled with new shared list", zap.Int64("shared_list", binding.SharedList))
			return models.EnableResult{Changed: true, MemexSocialLink: m.links.Format(binding.SharedList)}, nil
		}
		if !errors.Is(err, models.ErrBindingExists) {
			return models.EnableResult{}, err
		}

		log.Warn("lost race creating channel binding, using existing one")
		binding, err = m.store.FindBinding(ctx, guildID, channelID)
		if err != nil {
			return models.EnableResult{}, err
		}
		if binding == nil {
			return models.EnableResult{}, oops.In("channel").
				With("guild_id", guildID, "channel_id", channelID).
				Wrapf(models.ErrNotFound, "binding reported as existing")
		}
	}

	link := m.links.Format(binding.SharedList)
	if binding.Enabled {
		log.Debug("channel already enabled")
		return models.EnableResult{Changed: false, MemexSocialLink: link}, nil
	}

	changed, err := m.store.SetBindingEnabled(ctx, binding.ID, true)
	if err != nil {
		return models.EnableResult{}, err
	}
	if changed {
		log.Info("channel re-enabled", zap.Int64("shared_list", binding.SharedList))
	}
	return models.EnableResult{Changed: changed, MemexSocialLink: link}, nil
}

func (m *Manager) createBinding(ctx context.Context, guildID, channelID, channelName string) (*models.ChannelBinding, error) {
	now := m.now()
	list := &models.SharedList{
		Creator:     models.DiscordListUserID,
		CreatedWhen: now,
		UpdatedWhen: now,
		Title:       channelName,
	}
	binding := &models.ChannelBinding{
		GuildID:     guildID,
		ChannelID:   channelID,
		ChannelName: channelName,
		Enabled:     true,
	}
	if err := m.store.CreateBoundList(ctx, list, binding); err != nil {
		return nil, err
	}
	return binding, nil
}

// DisableChannel clears the enabled flag of an existing binding. Disabling a
// channel that was never enabled is a no-op, not an error.
func (m *Manager) DisableChannel(ctx context.Context, guildID, channelID string) (models.DisableResult, error) {
	if err := requireNonEmpty("guild_id", guildID, "channel_id", channelID); err != nil {
		return models.DisableResult{}, err
	}
	log := m.logger.With(zap.String("guild_id", guildID), zap.String("channel_id", channelID))

	binding, err := m.store.FindBinding(ctx, guildID, channelID)
	if err != nil {
		return models.DisableResult{}, err
	}
	if binding == nil || !binding.Enabled {
		log.Debug("channel not enabled, nothing to disable")
		return models.DisableResult{Changed: false}, nil
	}

	changed, err := m.store.SetBindingEnabled(ctx, binding.ID, false)
	if err != nil {
		return models.DisableResult{}, err
	}
	if changed {
		log.Info("channel disabled")
	}
	return models.DisableResult{Changed: changed}, nil
}

// ListEnabledChannels returns the enabled channels in the order they were
// first enabled.
func (m *Manager) ListEnabledChannels(ctx context.Context) ([]models.EnabledChannel, error) {
	bindings, err := m.store.FindEnabledBindings(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(bindings, func(b models.ChannelBinding, _ int) models.EnabledChannel {
		return models.EnabledChannel{
			GuildID:         b.GuildID,
			ChannelID:       b.ChannelID,
			ChannelName:     b.ChannelName,
			MemexSocialLink: m.links.Format(b.SharedList),
		}
	}), nil
}

// requireNonEmpty takes alternating name/value pairs.
func requireNonEmpty(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return oops.In("channel").Code("invalid_argument").
				With("field", pairs[i]).
				Wrapf(models.ErrInvalidArgument, "%s must not be empty", pairs[i])
		}
	}
	return nil
}
