package metrics

import "github.com/jackc/pgx/v5/pgxpool"

// RecordDBPoolMetrics samples the pool and updates the connection
// gauges. Called periodically from the app's collector goroutine.
func RecordDBPoolMetrics(pool *pgxpool.Pool) {
	stat := pool.Stat()
	DBPoolConnections.WithLabelValues("in_use").Set(float64(stat.AcquiredConns()))
	DBPoolConnections.WithLabelValues("idle").Set(float64(stat.IdleConns()))
	DBPoolConnections.WithLabelValues("max").Set(float64(stat.MaxConns()))
}
