package bot

import (
	"context"
	"fmt"
	"time"

	"discord-lists/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const auditTimeout = time.Minute

// OrphanFinder reports shared lists that no channel binding points to.
type OrphanFinder interface {
	FindOrphanedLists(ctx context.Context, creator string) ([]models.SharedList, error)
}

// Scheduler runs the periodic orphaned list audit.
type Scheduler struct {
	cron   *cron.Cron
	store  OrphanFinder
	logger *zap.Logger
}

// NewScheduler schedules the audit on spec, a standard cron expression or
// descriptor such as "@hourly".
func NewScheduler(spec string, store OrphanFinder, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{store: store, logger: logger.Named("scheduler")}

	clog := cronLogger{s.logger.Sugar()}
	s.cron = cron.New(
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)
	if _, err := s.cron.AddFunc(spec, s.runAudit); err != nil {
		return nil, fmt.Errorf("could not set up audit job %q: %w", spec, err)
	}
	return s, nil
}

// Start starts the cron jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("orphaned list audit scheduled")
}

// Stop stops the cron jobs and waits for a running audit to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runAudit() {
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()
	if _, err := s.AuditOrphanedLists(ctx); err != nil {
		s.logger.Error("orphaned list audit failed", zap.Error(err))
	}
}

// AuditOrphanedLists logs every channel list that lost its binding and
// returns how many were found. Nothing is deleted.
func (s *Scheduler) AuditOrphanedLists(ctx context.Context) (int, error) {
	lists, err := s.store.FindOrphanedLists(ctx, models.DiscordListUserID)
	if err != nil {
		return 0, err
	}
	for _, l := range lists {
		s.logger.Warn("shared list has no channel binding",
			zap.Int64("shared_list", l.ID),
			zap.String("title", l.Title),
			zap.Time("created_when", l.CreatedWhen),
		)
	}
	s.logger.Debug("orphaned list audit finished", zap.Int("orphans", len(lists)))
	return len(lists), nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
