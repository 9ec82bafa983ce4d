package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStats is the subset of *pgxpool.Stat exported as metrics.
type PoolStats interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
	MaxConns() int32
	AcquireCount() int64
	EmptyAcquireCount() int64
	CanceledAcquireCount() int64
}

// PoolStatsCollector implements prometheus.Collector over a pool's stats.
type PoolStatsCollector struct {
	stat func() PoolStats

	acquired *prometheus.Desc
	idle     *prometheus.Desc
	total    *prometheus.Desc
	max      *prometheus.Desc
	acquires *prometheus.Desc
	empty    *prometheus.Desc
	canceled *prometheus.Desc
}

// NewPoolStatsCollector creates a collector reading stats from the given source.
func NewPoolStatsCollector(stat func() PoolStats) *PoolStatsCollector {
	return &PoolStatsCollector{
		stat:     stat,
		acquired: prometheus.NewDesc("db_pool_acquired_connections", "Number of currently acquired connections", nil, nil),
		idle:     prometheus.NewDesc("db_pool_idle_connections", "Number of currently idle connections", nil, nil),
		total:    prometheus.NewDesc("db_pool_total_connections", "Total number of connections in the pool", nil, nil),
		max:      prometheus.NewDesc("db_pool_max_connections", "Maximum number of connections allowed", nil, nil),
		acquires: prometheus.NewDesc("db_pool_acquire_count_total", "Total number of connection acquires", nil, nil),
		empty:    prometheus.NewDesc("db_pool_empty_acquire_count_total", "Acquires that had to wait for a connection", nil, nil),
		canceled: prometheus.NewDesc("db_pool_canceled_acquire_count_total", "Acquires canceled by their context", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquired
	ch <- c.idle
	ch <- c.total
	ch <- c.max
	ch <- c.acquires
	ch <- c.empty
	ch <- c.canceled
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stat()
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(s.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(s.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(s.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.empty, prometheus.CounterValue, float64(s.EmptyAcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.canceled, prometheus.CounterValue, float64(s.CanceledAcquireCount()))
}

// RegisterPoolMetrics registers a collector for pool with reg.
func RegisterPoolMetrics(reg prometheus.Registerer, pool *pgxpool.Pool) error {
	return reg.Register(NewPoolStatsCollector(func() PoolStats { return pool.Stat() }))
}
