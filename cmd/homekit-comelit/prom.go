package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var presenceGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace:   "homekit_comelit",
	Subsystem:   "zone",
	Name:        "presence",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"name", "unique_id"})

var availableGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace:   "homekit_comelit",
	Subsystem:   "zone",
	Name:        "available",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"name", "unique_id"})

var lastUpdateGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace:   "homekit_comelit",
	Subsystem:   "coordinator",
	Name:        "last_update_success",
	Help:        "",
	ConstLabels: map[string]string{},
})

var requestCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace:   "homekit_comelit",
	Subsystem:   "client",
	Name:        "requests_total",
	Help:        "",
	ConstLabels: map[string]string{},
})

var requestErrorCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace:   "homekit_comelit",
	Subsystem:   "client",
	Name:        "request_errors_total",
	Help:        "",
	ConstLabels: map[string]string{},
})
