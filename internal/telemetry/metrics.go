package telemetry

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Polls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kafkatap_polls_total",
		Help: "Poll calls issued against the underlying client.",
	})
	EmptyPolls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kafkatap_empty_polls_total",
		Help: "Poll calls that returned no records.",
	})
	Records = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kafkatap_records_total",
		Help: "Records handed to stream consumers.",
	})
	FuseTrips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kafkatap_fuse_trips_total",
		Help: "Deadline fuses that terminated a stream.",
	})
	Sends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafkatap_sends_total",
		Help: "Completed asynchronous sends, by result.",
	}, []string{"result"})
)

func Expose(port int) {
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		_ = http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
	}()
}
