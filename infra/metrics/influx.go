package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/relayops/modbalance/core/metrics"
	"github.com/relayops/modbalance/infra/logger"
)

// InfluxSink writes run summaries and per-week loads to an InfluxDB bucket.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// when the health check fails, so a down metrics backend never blocks a run.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one summary point per optimization run.
func (s *InfluxSink) RecordRun(r coremetrics.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("balance_run").
		AddTag("run_id", r.RunID).
		AddTag("status", r.Status).
		AddField("objective", r.Objective).
		AddField("gap", r.Gap).
		AddField("instances", r.Instances).
		AddField("weeks", r.Weeks).
		AddField("moved", r.Moved).
		AddField("total_slack_hours", r.TotalSlack).
		AddField("type_slack_hours", r.TypeSlack).
		AddField("solve_seconds", r.SolveDuration.Seconds()).
		SetTime(r.Timestamp)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordWeekLoads writes one point per week with before/after loads.
func (s *InfluxSink) RecordWeekLoads(recs []coremetrics.WeekLoadRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range recs {
		p := write.NewPointWithMeasurement("balance_week_load").
			AddTag("run_id", r.RunID).
			AddTag("week_index", strconv.Itoa(r.WeekIndex)).
			AddField("total_hours_before", r.TotalHoursBefore).
			AddField("total_hours_after", r.TotalHoursAfter).
			AddField("type_hours_before", r.TypeHoursBefore).
			AddField("type_hours_after", r.TypeHoursAfter).
			SetTime(r.Timestamp)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
