package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// StatSource is satisfied by *pgxpool.Pool.
type StatSource interface {
	Stat() *pgxpool.Stat
}

// PoolStatsCollector exports pgxpool statistics for the catalog database.
type PoolStatsCollector struct {
	pool  StatSource
	descs map[string]*prometheus.Desc
}

type poolStat struct {
	name      string
	help      string
	valueType prometheus.ValueType
	value     func(*pgxpool.Stat) float64
}

var poolStats = []poolStat{
	{"db_pool_acquired_connections", "Number of currently acquired connections", prometheus.GaugeValue,
		func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }},
	{"db_pool_idle_connections", "Number of currently idle connections", prometheus.GaugeValue,
		func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }},
	{"db_pool_total_connections", "Total number of connections in the pool", prometheus.GaugeValue,
		func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }},
	{"db_pool_max_connections", "Maximum number of connections allowed", prometheus.GaugeValue,
		func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }},
	{"db_pool_acquire_count_total", "Total number of connection acquires", prometheus.CounterValue,
		func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) }},
	{"db_pool_acquire_duration_seconds_total", "Total time spent acquiring connections in seconds", prometheus.CounterValue,
		func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() }},
	{"db_pool_empty_acquire_count_total", "Total number of acquires that had to wait for a connection", prometheus.CounterValue,
		func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) }},
}

// NewPoolStatsCollector builds a collector labelled with the service name.
func NewPoolStatsCollector(pool StatSource, service string) *PoolStatsCollector {
	c := &PoolStatsCollector{pool: pool, descs: make(map[string]*prometheus.Desc, len(poolStats))}
	for _, ps := range poolStats {
		c.descs[ps.name] = prometheus.NewDesc(ps.name, ps.help, nil, prometheus.Labels{"service": service})
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, ps := range poolStats {
		ch <- c.descs[ps.name]
	}
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()
	for _, ps := range poolStats {
		ch <- prometheus.MustNewConstMetric(c.descs[ps.name], ps.valueType, ps.value(stat))
	}
}
