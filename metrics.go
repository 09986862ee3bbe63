// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricConnections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvmont_smtp_connection_total",
			Help: "Outgoing SMTP connection attempts.",
		},
		[]string{
			"security", // plain, tls
		},
	)
	metricSend = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mvmont_smtp_send_duration_seconds",
			Help:    "SMTP send duration and result in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{
			"result", // ok, configuration, connection, protocol, rejected, tls
		},
	)
)
