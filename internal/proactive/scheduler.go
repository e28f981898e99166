package proactive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"sahayak-backend/internal/logger"
)

const (
	JobSuggestions = "suggestions"
	JobBriefings   = "briefings"

	runLockTTL = 30 * time.Minute
)

// ErrLocked is returned when another process holds a job's run lock.
var ErrLocked = errors.New("job is already running")

// Locker guards a scheduled job against overlapping runs across processes.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

// RedisLocker implements Locker with SET NX and a token-checked delete.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`)

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	unlock := func() {
		releaseScript.Run(context.Background(), l.client, []string{key}, token)
	}
	return unlock, true, nil
}

type SchedulerConfig struct {
	SuggestionSpec string
	BriefingSpec   string
	Location       *time.Location
}

// Scheduler fires the suggestion and briefing jobs on cron schedules.
type Scheduler struct {
	cron        *cron.Cron
	suggestions *SuggestionEngine
	briefings   *BriefingEngine
	locker      Locker
	loc         *time.Location
	now         func() time.Time
	logger      *zap.Logger
}

func NewScheduler(cfg SchedulerConfig, suggestions *SuggestionEngine, briefings *BriefingEngine, locker Locker, l *zap.Logger) (*Scheduler, error) {
	l = logger.OrNop(l).Named("scheduler")
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	cl := cronLogger{l.Sugar()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		suggestions: suggestions,
		briefings:   briefings,
		locker:      locker,
		loc:         loc,
		now:         time.Now,
		logger:      l,
	}

	if _, err := s.cron.AddFunc(cfg.SuggestionSpec, func() { s.tick(JobSuggestions) }); err != nil {
		return nil, fmt.Errorf("suggestion schedule %q: %w", cfg.SuggestionSpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.BriefingSpec, func() { s.tick(JobBriefings) }); err != nil {
		return nil, fmt.Errorf("briefing schedule %q: %w", cfg.BriefingSpec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop prevents new ticks and returns a context done when running ticks end.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) tick(job string) {
	ctx := context.Background()
	if _, err := s.Run(ctx, job); err != nil {
		if errors.Is(err, ErrLocked) {
			s.logger.Info("skipping tick, job running elsewhere", zap.String("job", job))
			return
		}
		s.logger.Error("scheduled job failed", zap.String("job", job), zap.Error(err))
	}
}

// Run executes one tick of job under its run lock.
func (s *Scheduler) Run(ctx context.Context, job string) (RunStats, error) {
	unlock, ok, err := s.locker.TryLock(ctx, "scheduler_lock:"+job, runLockTTL)
	if err != nil {
		return RunStats{}, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return RunStats{}, ErrLocked
	}
	defer unlock()

	switch job {
	case JobSuggestions:
		return s.suggestions.RunAll(ctx)
	case JobBriefings:
		return s.briefings.RunAll(ctx, s.now().In(s.loc))
	default:
		return RunStats{}, fmt.Errorf("unknown job %q", job)
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
