package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/angas/elpriskvart-go/days"
	"github.com/angas/elpriskvart-go/elprisetjustnu"
	"github.com/angas/elpriskvart-go/prices"
)

// Fetcher is what the coordinator needs from the upstream client.
// Satisfied by *elprisetjustnu.Client.
type Fetcher interface {
	FetchDay(ctx context.Context, day days.Day) elprisetjustnu.FetchResult
}

type Config struct {
	// Local hour after which tomorrow's prices are expected upstream.
	PublicationHour int
	// Cadence while tomorrow's prices are secured.
	NormalInterval time.Duration
	// Cadence while a wanted fetch keeps coming back empty-handed.
	RetryInterval time.Duration
	// Days of history kept behind today.
	RetentionDays int
	// Consumer-local timezone for all calendar-day decisions.
	Location *time.Location
}

func (c Config) withDefaults() Config {
	if c.NormalInterval <= 0 {
		c.NormalInterval = time.Hour
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 30 * time.Minute
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 2
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}

// Snapshot is a read-only copy of the coordinator state handed to
// consumers. Consumers never see the live cache.
type Snapshot struct {
	Today              days.Day
	Cache              prices.Cache
	TomorrowFetchedFor days.Day
	Interval           time.Duration
	LastTickAt         time.Time // UTC, marks "coordinator alive", not "data fresh"
	LastTickOK         bool      // today's series was present when the tick finished
}

func (s Snapshot) TodaySeries() prices.DailySeries {
	return s.Cache[s.Today]
}

func (s Snapshot) TomorrowSeries() prices.DailySeries {
	return s.Cache[s.Today.Next()]
}

// Coordinator owns the price cache for one price area and decides on
// every tick what to fetch, which cadence to run at and what to prune.
// Ticks never overlap: Run drives them from a single goroutine and the
// startup tick happens before the loop starts.
type Coordinator struct {
	logger  *slog.Logger
	fetcher Fetcher
	cfg     Config
	now     func() time.Time

	mu                 sync.RWMutex
	cache              prices.Cache
	tomorrowFetchedFor days.Day
	interval           time.Duration
	lastTickAt         time.Time
	lastTickOK         bool

	listeners []func(Snapshot)
}

func New(logger *slog.Logger, fetcher Fetcher, cfg Config) *Coordinator {
	cfg = cfg.withDefaults()
	return &Coordinator{
		logger:   logger,
		fetcher:  fetcher,
		cfg:      cfg,
		now:      time.Now,
		cache:    make(prices.Cache),
		interval: cfg.NormalInterval,
	}
}

// OnUpdate registers a listener invoked after every completed tick.
// Must be called before Run.
func (c *Coordinator) OnUpdate(fn func(Snapshot)) {
	c.listeners = append(c.listeners, fn)
}

// Run performs one synchronous tick, then re-arms a timer with whatever
// cadence the previous tick decided on. Returns when ctx is done.
func (c *Coordinator) Run(ctx context.Context) {
	c.Tick(ctx)

	timer := time.NewTimer(c.Interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("refresh loop stopping")
			return
		case <-timer.C:
			c.Tick(ctx)
			timer.Reset(c.Interval())
		}
	}
}

// Tick runs one full pass of the refresh policy: ensure today, decide
// on tomorrow, reset the rollover flag, prune, post-check. Not safe for
// concurrent use; Run serializes all calls.
func (c *Coordinator) Tick(ctx context.Context) {
	nowLocal := c.now().In(c.cfg.Location)
	today := days.FromTime(nowLocal, c.cfg.Location)
	tomorrow := today.Next()
	c.logger.Debug("refresh tick", slog.String("today", today.String()))

	c.ensureToday(ctx, today)
	c.decideTomorrow(ctx, nowLocal, today, tomorrow)
	c.resetOnRollover(nowLocal, today)
	c.prune(today)

	if c.series(today).IsEmpty() {
		c.logger.Warn("no price data available for today after update attempt",
			slog.String("today", today.String()))
	}

	c.mu.Lock()
	c.lastTickAt = c.now().UTC()
	c.lastTickOK = !c.cache[today].IsEmpty()
	c.mu.Unlock()

	snapshot := c.Snapshot()
	for _, fn := range c.listeners {
		fn(snapshot)
	}
}

// ensureToday fetches today's prices whenever the cache has no usable
// entry for them. A failure just leaves the condition in place, so the
// next tick tries again.
func (c *Coordinator) ensureToday(ctx context.Context, today days.Day) {
	if !c.series(today).IsEmpty() {
		return
	}

	c.logger.Info("fetching prices for today", slog.String("day", today.String()))
	res := c.fetcher.FetchDay(ctx, today)
	if !obtained(res) {
		c.logger.Warn("could not fetch prices for today",
			slog.String("day", today.String()),
			slog.String("status", res.Status.String()),
			slog.Any("error", res.Err))
		return
	}

	c.replaceSeries(today, prices.Parse(c.logger, res.Raw, today, c.cfg.Location))
}

// decideTomorrow attempts the forecast fetch once it is past the
// publication hour and the forecast is not already secured. Both a 404
// and a genuine failure mean "not obtained yet" and shorten the cadence;
// securing the forecast relaxes it again.
func (c *Coordinator) decideTomorrow(ctx context.Context, nowLocal time.Time, today, tomorrow days.Day) {
	timeToFetch := nowLocal.Hour() >= c.cfg.PublicationHour
	needed := c.flag() != tomorrow

	switch {
	case timeToFetch && needed:
		c.logger.Info("fetching prices for tomorrow",
			slog.String("day", tomorrow.String()),
			slog.String("localTime", nowLocal.Format("15:04")))

		res := c.fetcher.FetchDay(ctx, tomorrow)
		if obtained(res) {
			series := prices.Parse(c.logger, res.Raw, tomorrow, c.cfg.Location)
			c.replaceSeries(tomorrow, series)
			c.setFlag(tomorrow)
			c.logger.Info("secured prices for tomorrow",
				slog.String("day", tomorrow.String()),
				slog.Int("intervals", len(series)))
			c.setInterval(c.cfg.NormalInterval, "tomorrow's prices fetched")
		} else {
			c.logger.Warn("failed to fetch prices for tomorrow, will retry",
				slog.String("day", tomorrow.String()),
				slog.String("status", res.Status.String()),
				slog.Any("error", res.Err))
			c.setInterval(c.cfg.RetryInterval, "fetch for tomorrow failed")
		}

	case !timeToFetch && c.flag() == tomorrow:
		// Carry-over from yesterday evening, no reason to poll hard.
		c.setInterval(c.cfg.NormalInterval, "tomorrow's prices already available")
	}
}

// resetOnRollover clears a stale forecast flag after midnight: a flag
// equal to today refers to what was "tomorrow" on the previous calendar
// day. Detects the rollover without a dedicated midnight timer.
func (c *Coordinator) resetOnRollover(nowLocal time.Time, today days.Day) {
	if nowLocal.Hour() >= c.cfg.PublicationHour || c.flag() != today {
		return
	}

	c.logger.Info("new day, resetting tomorrow-fetched state",
		slog.String("today", today.String()))
	c.setFlag("")
	c.setInterval(c.cfg.NormalInterval, "day rollover")
}

// prune drops every cached day strictly older than the retention cutoff.
func (c *Coordinator) prune(today days.Day) {
	cutoff := today.Add(-c.cfg.RetentionDays)

	c.mu.Lock()
	defer c.mu.Unlock()
	for day := range c.cache {
		if day.Before(cutoff) {
			c.logger.Debug("pruning old price data", slog.String("day", day.String()))
			delete(c.cache, day)
		}
	}
}

// Snapshot returns a copy of the coordinator state safe to hand out.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Today:              days.FromTime(c.now(), c.cfg.Location),
		Cache:              c.cache.Clone(),
		TomorrowFetchedFor: c.tomorrowFetchedFor,
		Interval:           c.interval,
		LastTickAt:         c.lastTickAt,
		LastTickOK:         c.lastTickOK,
	}
}

func (c *Coordinator) Interval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.interval
}

func (c *Coordinator) Location() *time.Location {
	return c.cfg.Location
}

func (c *Coordinator) series(day days.Day) prices.DailySeries {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache[day]
}

func (c *Coordinator) replaceSeries(day days.Day, series prices.DailySeries) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[day] = series
}

func (c *Coordinator) flag() days.Day {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tomorrowFetchedFor
}

func (c *Coordinator) setFlag(day days.Day) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tomorrowFetchedFor = day
}

func (c *Coordinator) setInterval(interval time.Duration, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interval == interval {
		return
	}
	c.logger.Debug("changing poll interval",
		slog.Duration("from", c.interval),
		slog.Duration("to", interval),
		slog.String("reason", reason))
	c.interval = interval
}

// obtained reports whether a fetch actually produced price entries.
// A success carrying an empty array is treated like a miss so the
// retry cadence stays in effect.
func obtained(res elprisetjustnu.FetchResult) bool {
	if !res.OK() {
		return false
	}
	if list, ok := res.Raw.([]any); ok {
		return len(list) > 0
	}
	return res.Raw != nil
}
