package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"storefront/internal/services"

	"github.com/go-co-op/gocron/v2"
)

const (
	LowStockJobName   = "low-stock-alerts"
	AdminCacheJobName = "admin-cache-purge"

	lowStockInterval   = 30 * time.Minute
	adminCacheInterval = 5 * time.Minute
)

// JobScheduler runs the periodic maintenance jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	alerts    *InventoryAlertService
	accounts  services.AccountService
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

func NewJobScheduler(alerts *InventoryAlertService, accounts services.AccountService) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		alerts:    alerts,
		accounts:  accounts,
		jobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	alertsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(lowStockInterval),
		gocron.NewTask(js.alerts.ScheduledLowStockCheck, context.Background()),
		gocron.WithName(LowStockJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	purgeJob, err := js.scheduler.NewJob(
		gocron.DurationJob(adminCacheInterval),
		gocron.NewTask(js.purgeAdminCache),
		gocron.WithName(AdminCacheJobName),
	)
	if err != nil {
		return err
	}

	js.mu.Lock()
	js.jobs[LowStockJobName] = alertsJob
	js.jobs[AdminCacheJobName] = purgeJob
	js.mu.Unlock()

	log.Printf("Registered %d background jobs", len(js.jobs))
	return nil
}

func (js *JobScheduler) purgeAdminCache() {
	remaining := js.accounts.PurgeExpired()
	log.Printf("Purged expired admin cache entries, %d remain", remaining)
}

// RunNow triggers a registered job outside its schedule
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return gocron.ErrJobNotFound
	}
	return job.RunNow()
}

// JobNames lists the registered jobs
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}
