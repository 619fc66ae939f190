// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package reporter is a façade for reporting duties in quarry.
//
// Such a façade currently includes logging, metrics and healthchecks.
package reporter

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"quarry/common/reporter/logger"
)

// Reporter contains the state for a reporter. It also supports the
// same interface as a logger.
type Reporter struct {
	logger.Logger

	registry         *prometheus.Registry
	metricsLock      sync.Mutex
	metrics          map[string]prometheus.Collector
	healthchecksLock sync.Mutex
	healthchecks     map[string]HealthcheckFunc
}

// Configuration contains the reporter configuration.
type Configuration struct {
	// Logging is the configuration for the logging part
	Logging logger.Configuration
}

// DefaultConfiguration is the default reporter configuration.
func DefaultConfiguration() Configuration {
	return Configuration{
		Logging: logger.DefaultConfiguration(),
	}
}

// New creates a new reporter from a configuration.
func New(config Configuration) (*Reporter, error) {
	l, err := logger.New(config.Logging)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewGoCollector())

	return &Reporter{
		Logger:       l,
		registry:     registry,
		metrics:      map[string]prometheus.Collector{},
		healthchecks: map[string]HealthcheckFunc{},
	}, nil
}

// Start starts the reporter component.
func (r *Reporter) Start() error {
	return nil
}

// Stop stops reporting and clean the associated resources.
func (r *Reporter) Stop() error {
	r.Info().Msg("stop reporting")
	return nil
}
