package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/relayops/modbalance/config"
	"github.com/relayops/modbalance/core/balancer"
	coremetrics "github.com/relayops/modbalance/core/metrics"
	"github.com/relayops/modbalance/infra/ingest"
	"github.com/relayops/modbalance/infra/logger"
	inframetrics "github.com/relayops/modbalance/infra/metrics"
	"github.com/relayops/modbalance/infra/notify"
	"github.com/relayops/modbalance/infra/store"
	"github.com/relayops/modbalance/internal/eventbus"
	"github.com/relayops/modbalance/pkg/export"
)

// Service wires the optimizer to its collaborators: input loading, metric
// sinks, run persistence, export and notification.
type Service struct {
	cfg      *config.Config
	log      logger.Logger
	driver   *balancer.Driver
	bus      *eventbus.Bus[balancer.Event]
	sink     coremetrics.Sink
	store    *store.SQLiteStore
	notifier notify.Notifier
}

// New builds the service from configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}

	var runStore *store.SQLiteStore
	if cfg.Store.Path != "" {
		runStore, err = store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("run store: %w", err)
		}
	}

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Notify.Enabled {
		notifier, err = notify.NewMQTTNotifier(cfg.Notify)
		if err != nil {
			return nil, fmt.Errorf("notifier: %w", err)
		}
	}

	driver, err := balancer.New(cfg.Balancer, logger.New("balancer"))
	if err != nil {
		return nil, err
	}
	bus := eventbus.New[balancer.Event]()
	driver.SetEventBus(bus)

	return &Service{
		cfg:      cfg,
		log:      log,
		driver:   driver,
		bus:      bus,
		sink:     sink,
		store:    runStore,
		notifier: notifier,
	}, nil
}

// Run executes one optimization: load the input tables, solve, export the
// result tables, persist, record and notify.
func (s *Service) Run(ctx context.Context) error {
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := inframetrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	progress := s.bus.Subscribe()
	defer s.bus.Unsubscribe(progress)
	go func() {
		for ev := range progress {
			if ev.Kind == balancer.EventIncumbent {
				s.log.Debugw("incumbent", map[string]any{
					"run_id":    ev.RunID,
					"objective": ev.Objective,
					"nodes":     ev.Nodes,
				})
			}
		}
	}()

	instances, err := ingest.LoadInstances(s.cfg.Input.InstancesPath)
	if err != nil {
		return fmt.Errorf("load instances: %w", err)
	}
	weeks, err := ingest.LoadWeeks(s.cfg.Input.WeeksPath)
	if err != nil {
		return fmt.Errorf("load weeks: %w", err)
	}

	started := time.Now()
	res, err := s.driver.Solve(instances, weeks)
	if err != nil {
		return err
	}

	if err := s.exportResult(res); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.SaveRun(res, started); err != nil {
			s.log.Errorf("persist run %s: %v", res.RunID, err)
		}
	}
	s.record(res, len(instances), len(weeks), started)
	if err := s.notifier.NotifyRunComplete(notify.Summarize(res, time.Now())); err != nil {
		s.log.Errorf("notify run %s: %v", res.RunID, err)
	}
	return nil
}

func (s *Service) exportResult(res *balancer.Result) error {
	dir := s.cfg.Input.OutputDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	ext := s.cfg.Input.Format

	write := func(name string, fn func(f *os.File) error) error {
		f, err := os.Create(filepath.Join(dir, name+"."+ext))
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		return fn(f)
	}

	if ext == "json" {
		if err := write("suggested_schedule", func(f *os.File) error {
			return export.WriteScheduleJSON(f, res.Schedule)
		}); err != nil {
			return err
		}
		if err := write("week_comparison", func(f *os.File) error {
			return export.WriteWeekComparisonJSON(f, res.Weeks)
		}); err != nil {
			return err
		}
		if len(res.Requests) > 0 {
			return write("request_reconciliation", func(f *os.File) error {
				return export.WriteRequestsJSON(f, res.Requests)
			})
		}
		return nil
	}

	if err := write("suggested_schedule", func(f *os.File) error {
		return export.WriteScheduleCSV(f, res.Schedule)
	}); err != nil {
		return err
	}
	if err := write("week_comparison", func(f *os.File) error {
		return export.WriteWeekComparisonCSV(f, res.Weeks)
	}); err != nil {
		return err
	}
	if len(res.Requests) > 0 {
		return write("request_reconciliation", func(f *os.File) error {
			return export.WriteRequestsCSV(f, res.Requests)
		})
	}
	return nil
}

func (s *Service) record(res *balancer.Result, instances, weeks int, started time.Time) {
	rec := coremetrics.RunRecord{
		RunID:         res.RunID,
		Status:        res.Status.String(),
		Objective:     res.Objective,
		Gap:           res.Gap,
		Instances:     instances,
		Weeks:         weeks,
		Moved:         res.MovedCount,
		TotalSlack:    res.TotalSlackHours,
		TypeSlack:     res.TypeSlackHours,
		SolveDuration: res.SolveDuration,
		Timestamp:     started,
	}
	if err := s.sink.RecordRun(rec); err != nil {
		s.log.Errorf("record run: %v", err)
	}
	loads := make([]coremetrics.WeekLoadRecord, 0, len(res.Weeks))
	for _, w := range res.Weeks {
		loads = append(loads, coremetrics.WeekLoadRecord{
			RunID:            res.RunID,
			WeekIndex:        w.WeekIndex,
			TotalHoursBefore: w.TotalHoursBefore,
			TotalHoursAfter:  w.TotalHoursAfter,
			TypeHoursBefore:  w.TypeHoursBefore,
			TypeHoursAfter:   w.TypeHoursAfter,
			Timestamp:        started,
		})
	}
	if err := s.sink.RecordWeekLoads(loads); err != nil {
		s.log.Errorf("record week loads: %v", err)
	}
}

// Close releases the service's resources.
func (s *Service) Close() error {
	s.bus.Close()
	if err := s.notifier.Close(); err != nil {
		return err
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
