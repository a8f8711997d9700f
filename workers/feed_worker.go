package workers

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rescueradar/models"
)

const (
	DefaultFeedInterval = 30 * time.Second
	refreshTimeout      = 15 * time.Second
)

// ReportRefresher reloads the active report list.
type ReportRefresher interface {
	Refresh(ctx context.Context) ([]models.ActiveReport, error)
}

// RefreshBroadcaster receives each refreshed list.
type RefreshBroadcaster interface {
	BroadcastReportsRefreshed(reports []models.ActiveReport)
}

// FeedWorker periodically refreshes the active report cache and pushes the result
// to live feed subscribers.
type FeedWorker struct {
	refresher   ReportRefresher
	broadcaster RefreshBroadcaster
	interval    time.Duration

	isRunning bool
	mutex     sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup

	stats      FeedWorkerStats
	statsMutex sync.RWMutex
}

type FeedWorkerStats struct {
	Refreshes     int64     `json:"refreshes"`
	Failures      int64     `json:"failures"`
	LastReports   int       `json:"last_reports"`
	LastRefreshAt time.Time `json:"last_refresh_at"`
	StartTime     time.Time `json:"start_time"`
}

func NewFeedWorker(refresher ReportRefresher, broadcaster RefreshBroadcaster, interval time.Duration) *FeedWorker {
	if interval <= 0 {
		interval = DefaultFeedInterval
	}
	return &FeedWorker{
		refresher:   refresher,
		broadcaster: broadcaster,
		interval:    interval,
	}
}

func (fw *FeedWorker) Start() error {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()

	if fw.isRunning {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	fw.cancel = cancel
	fw.isRunning = true

	fw.statsMutex.Lock()
	fw.stats.StartTime = time.Now()
	fw.statsMutex.Unlock()

	fw.wg.Add(1)
	go fw.run(ctx)

	logrus.Infof("Feed Worker started, refreshing every %s", fw.interval)
	return nil
}

// Stop halts the ticker and waits for a refresh already in progress to finish.
func (fw *FeedWorker) Stop() error {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()

	if !fw.isRunning {
		return nil
	}

	logrus.Info("Stopping Feed Worker...")
	fw.cancel()
	fw.isRunning = false
	fw.wg.Wait()

	logrus.Info("Feed Worker stopped successfully")
	return nil
}

func (fw *FeedWorker) IsRunning() bool {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	return fw.isRunning
}

func (fw *FeedWorker) GetStats() FeedWorkerStats {
	fw.statsMutex.RLock()
	defer fw.statsMutex.RUnlock()
	return fw.stats
}

func (fw *FeedWorker) run(ctx context.Context) {
	defer fw.wg.Done()

	ticker := time.NewTicker(fw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fw.refresh()
		case <-ctx.Done():
			return
		}
	}
}

func (fw *FeedWorker) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	reports, err := fw.refresher.Refresh(ctx)

	fw.statsMutex.Lock()
	fw.stats.Refreshes++
	if err != nil {
		fw.stats.Failures++
	} else {
		fw.stats.LastReports = len(reports)
		fw.stats.LastRefreshAt = time.Now()
	}
	fw.statsMutex.Unlock()

	if err != nil {
		logrus.WithError(err).Warn("Feed refresh failed")
		return
	}
	fw.broadcaster.BroadcastReportsRefreshed(reports)
}
