package prom

import (
	"strconv"
	"sync"

	xhttp "github.com/nimasrn/card-gateway/pkg/http"
	"github.com/nimasrn/card-gateway/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemAPI = "api"
)
const (
	MetricAPIRequestDuration  = "request_duration_seconds"
	MetricAPIRequestsTotal    = "requests_total"
	MetricAPIRequestsInFlight = "requests_in_flight"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionGaugeVec = make(map[string]*prometheus.GaugeVec)
var MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

func Create(host string, env string, nameSpace string) error {
	defaultLabels = make(prometheus.Labels)
	defaultLabels["env"] = env
	defaultLabels["instance"] = host
	namespace = nameSpace
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	// Simulated API
	hasError(createHistogramVec(SystemAPI, MetricAPIRequestDuration, []string{"endpoint"}))
	hasError(createCounterVec(SystemAPI, MetricAPIRequestsTotal, []string{"endpoint", "status"}))
	hasError(createGaugeVec(SystemAPI, MetricAPIRequestsInFlight, []string{"endpoint"}))

	return err
}

// NewMetricsServer returns an engine that serves the default registry on
// uri. The caller starts and stops it.
func NewMetricsServer(uri string) *xhttp.Engine {
	s := xhttp.CreateServer()
	s.GET(uri, fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	return s
}

// ListenAndServe serves metrics on addr until the server fails.
func ListenAndServe(addr string, uri string) error {
	logger.Info("[metrics-server] listening...", "addr", addr, "uri", uri)
	return NewMetricsServer(uri).ListenAndServe(addr)
}

func createCounterVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionCounterVec[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionHistogramVec[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionHistogramVec[subsystem+name])
}

func createGaugeVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()

	MetricCollectionGaugeVec[subsystem+name] = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionGaugeVec[subsystem+name])
}

func IncGaugeVec(subsystem, name string, labelValues ...string) {
	AddGaugeVec(subsystem, name, 1, labelValues...)
}

func AddGaugeVec(subsystem, name string, num float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionGaugeVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Add(num)
		return
	}
	logger.Warn("[metrics-server] gauge not found", "subsystem", subsystem, "name", name)
}

func AddCounterVec(subsystem, name string, num float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounterVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Add(num)
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	AddCounterVec(subsystem, name, 1, labelValues...)
}

func AddHistogramVec(subsystem, name string, number float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionHistogramVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram vec not found", "subsystem", subsystem, "name", name)
}

// ObserveAPIRequest records one simulated API call: its wall time, including
// the injected latency, and its outcome status.
func ObserveAPIRequest(endpoint string, status int, seconds float64) {
	AddHistogramVec(SystemAPI, MetricAPIRequestDuration, seconds, endpoint)
	IncCounterVec(SystemAPI, MetricAPIRequestsTotal, endpoint, strconv.Itoa(status))
}

func APIRequestStarted(endpoint string) {
	IncGaugeVec(SystemAPI, MetricAPIRequestsInFlight, endpoint)
}

func APIRequestFinished(endpoint string) {
	AddGaugeVec(SystemAPI, MetricAPIRequestsInFlight, -1, endpoint)
}
