package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UploadAdmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "memoryshare_upload_admissions_total",
		Help: "Upload admission outcomes by result",
	}, []string{"result"})

	UploadBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "memoryshare_upload_bytes",
		Help:    "Size of admitted uploads in bytes",
		Buckets: prometheus.ExponentialBuckets(64<<10, 4, 8), // 64KiB .. 1GiB
	})

	OrphanedObjects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memoryshare_orphaned_objects_total",
		Help: "Objects left in the store after a failed compensating or best-effort delete",
	})

	PaymentEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "memoryshare_payment_events_total",
		Help: "Payment flow events by kind",
	}, []string{"event"})

	once sync.Once
)

// Init 注册所有指标，重复调用安全
func Init() {
	once.Do(func() {
		prometheus.MustRegister(UploadAdmissions, UploadBytes, OrphanedObjects, PaymentEvents)
	})
}

// Handler returns an http.Handler for Prometheus scraping
func Handler() http.Handler {
	return promhttp.Handler()
}
