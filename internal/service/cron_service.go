// Package service contains the service layer for the Tunely API
package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tunely/tunelyapi/internal/config"
	"github.com/tunely/tunelyapi/internal/repository"
	"github.com/tunely/tunelyapi/pkg/utils/state"
	"github.com/tunely/tunelyapi/pkg/utils/zaplogger"
	"gorm.io/gorm"
)

var companiesCollectedAtKey = "COMPANIES_COLLECTED_AT"

// CronService schedules the periodic collection runs
type CronService struct {
	cfg         *config.Config
	c           *cron.Cron
	companyRepo *repository.CompanyRepository
	collector   *CollectorService
	dart        DisclosureClient
	state       *state.State
}

// NewCronService creates a new CronService
func NewCronService(cfg *config.Config, db *gorm.DB, dartClient DisclosureClient, collector *CollectorService) *CronService {
	stateManager, err := state.NewState(db)
	if err != nil {
		zaplogger.Fatal("failed to create state manager", zaplogger.Fields{"error": err.Error()})
	}

	return &CronService{
		cfg:         cfg,
		c:           cron.New(),
		companyRepo: repository.NewCompanyRepository(db),
		collector:   collector,
		dart:        dartClient,
		state:       stateManager,
	}
}

// Start starts the cron service
func (cs *CronService) Start() {
	zaplogger.Info("Initializing CronService")

	// Scheduled jobs
	cs.addScheduledJob("Companies COLLECT Job", cs.companiesCollectJob, "30 18 * * 1-5") // Once at 06:30pm, Mon-Fri

	// Startup jobs
	cs.addStartupJob("DART Registry WARMUP Job", cs.registryWarmupJob, 2*time.Second)
	cs.addStartupJob("Companies COLLECT Job", cs.companiesCollectJob, 10*time.Second)

	cs.c.Start()
}

// addStartupJob adds a job run once after a delay when the server boots
func (cs *CronService) addStartupJob(name string, job func(), delay time.Duration) {
	go func() {
		time.Sleep(delay)
		zaplogger.Info("STARTED STARTUP job", zaplogger.Fields{"job": name})
		job()
		zaplogger.Info("COMPLETED STARTUP job", zaplogger.Fields{"job": name})
	}()
	zaplogger.Info("QUEUED STARTUP job", zaplogger.Fields{"job": name})
}

// addScheduledJob adds a job run on a cron schedule
func (cs *CronService) addScheduledJob(name string, job func(), schedule string) {
	_, err := cs.c.AddFunc(schedule, func() {
		zaplogger.Info("STARTED SCHEDULED job", zaplogger.Fields{"job": name})
		job()
		zaplogger.Info("COMPLETED SCHEDULED job", zaplogger.Fields{"job": name})
	})
	if err != nil {
		zaplogger.Error("FAILED TO QUEUE SCHEDULED job", zaplogger.Fields{
			"job":   name,
			"error": err.Error(),
		})
		return
	}
	zaplogger.Info("QUEUED SCHEDULED job", zaplogger.Fields{"job": name})
}

// registryWarmupJob loads the corp registry into the cache so the first
// search request does not pay the archive download
func (cs *CronService) registryWarmupJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := cs.dart.SearchCompanyByName(ctx, ""); err != nil {
		zaplogger.Error("DART Registry WARMUP Job", zaplogger.Fields{"error": err.Error()})
	}
}

// companiesCollectJob runs a collection pass over every registered company.
// The state key gates the job to one run per day so a restart does not
// trigger a second pass.
func (cs *CronService) companiesCollectJob() {
	jobName := "Companies COLLECT Job"

	lastRunAt, err := cs.state.Get(companiesCollectedAtKey)
	if err == nil && !cs.isCollectRequired(lastRunAt) {
		zaplogger.Info("Companies collect not required", zaplogger.Fields{
			companiesCollectedAtKey: lastRunAt,
		})
		return
	}

	companies, err := cs.companyRepo.GetAll()
	if err != nil {
		zaplogger.Error(jobName, zaplogger.Fields{"error": err.Error()})
		return
	}

	var collected, failed int
	for _, company := range companies {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		_, err := cs.collector.Collect(ctx, company.ID)
		cancel()
		if err != nil {
			failed++
			zaplogger.Error(jobName, zaplogger.Fields{
				"corp_code": company.CorpCode,
				"error":     err.Error(),
			})
			continue
		}
		collected++
	}

	if err := cs.state.Set(companiesCollectedAtKey, time.Now().Format("2006-01-02 15:04:05")); err != nil {
		zaplogger.Error(jobName, zaplogger.Fields{"error": err.Error()})
		return
	}

	zaplogger.Info(jobName, zaplogger.Fields{
		"companies": len(companies),
		"collected": collected,
		"failed":    failed,
	})
}

// isCollectRequired reports whether the last run was before today
func (cs *CronService) isCollectRequired(lastRunAt string) bool {
	lastRunTime, err := time.Parse("2006-01-02 15:04:05", lastRunAt)
	if err != nil {
		return true // unparsable state, assume a run is needed
	}
	now := time.Now()
	return lastRunTime.Year() != now.Year() || lastRunTime.YearDay() != now.YearDay()
}
