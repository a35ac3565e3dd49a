package records

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	RESULT_SUCCESS = "SUCCESS"
	RESULT_FAILURE = "FAILURE"
)

var recordCountGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "record_count",
	Help: "records currently in the store",
})

var storeSizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "store_size_bytes",
	Help: "byte size of the serialized store document",
})

var recordOpsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "record_operations_total",
	Help: "record operations",
}, []string{"action", "result"})

var persistFailuresCounter = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "store_persist_failures_total",
	Help: "store writes that failed and were swallowed",
})

func (rc *RecordController) MetricsCollector(ctx context.Context) {
	log.Infof("Sync store metrics started.")
	for {
		select {
		case <-ctx.Done():
			log.Info("store metrics collector stopped")
			return
		case <-time.After(time.Second * 60):
		}

		stats, err := rc.Stats(ctx)
		if err != nil {
			log.Error("collect store stats err", err)
			continue
		}
		recordCountGauge.Set(float64(stats.Count))
		storeSizeGauge.Set(float64(stats.StorageSize))
		log.Debugf("store records %v, size %v bytes", stats.Count, stats.StorageSize)
	}
}

func InitPrometheus() {
	log.Info("register record store metrics")
	prometheus.MustRegister(recordCountGauge)
	prometheus.MustRegister(storeSizeGauge)
	prometheus.MustRegister(recordOpsCounter)
	prometheus.MustRegister(persistFailuresCounter)
}
