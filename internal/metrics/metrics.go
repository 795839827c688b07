package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SwapTransitions считает применённые переходы заявок по целевому статусу
	SwapTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillswap",
		Name:      "swap_transitions_total",
		Help:      "Applied swap request status transitions.",
	}, []string{"status"})

	// SideEffectFailures считает проглоченные ошибки побочных эффектов
	SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillswap",
		Name:      "side_effect_failures_total",
		Help:      "Best-effort side effects that failed after a committed write.",
	}, []string{"effect"})

	RealtimeClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skillswap",
		Name:      "realtime_clients",
		Help:      "Connected websocket clients.",
	})

	RealtimeSubscriptions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "skillswap",
		Name:      "realtime_subscriptions",
		Help:      "Active live subscriptions held by websocket clients.",
	}, []string{"topic"})
)
