// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package site

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricHTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvmont_http_requests_total",
			Help: "HTTP requests by handler, method and status code.",
		},
		[]string{
			"handler",
			"method",
			"code",
		},
	)
	metricHTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mvmont_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 20},
		},
		[]string{
			"handler",
			"method",
			"code",
		},
	)
	metricContactNotify = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvmont_contact_notification_total",
			Help: "Contact form notifications by result.",
		},
		[]string{
			"result", // sent, failed, skipped
		},
	)
)
