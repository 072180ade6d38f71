// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pdiddy/donor-match/internal/compile"
	"github.com/pdiddy/donor-match/internal/dataset"
	"github.com/pdiddy/donor-match/internal/logging"
	"github.com/pdiddy/donor-match/internal/metrics"
	"github.com/pdiddy/donor-match/internal/store"
	"github.com/pdiddy/donor-match/pkg/types"
)

// pipelineConfig assembles the configuration from flags, environment and
// config file, in viper's precedence order.
func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Dataset: types.DatasetConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:    viper.GetDuration("dataset.timeout"),
				UserAgent:  viper.GetString("dataset.user_agent"),
				MaxRetries: viper.GetInt("dataset.max_retries"),
			},
			Dir:     viper.GetString("dataset.dir"),
			BaseURL: viper.GetString("dataset.base_url"),
		},
		Compile: types.CompileConfig{
			Workers: viper.GetInt("compile.workers"),
		},
		Store: types.StoreConfig{
			Dir:      viper.GetString("store.dir"),
			Disabled: viper.GetBool("store.disabled"),
		},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Pretty: viper.GetBool("log.pretty"),
		},
	}
}

// app holds the collaborators a command needs. close must be called
// once the command finishes.
type app struct {
	cfg     types.PipelineConfig
	log     zerolog.Logger
	metrics *metrics.Metrics
	source  dataset.Source
	store   *store.Store
	manager *compile.Manager
}

func newApp() (*app, error) {
	cfg := pipelineConfig()
	log := logging.New(cfg.Log, os.Stderr)

	rt := &app{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		source:  dataset.NewSource(cfg.Dataset, log),
	}

	var persister compile.Persister
	if !cfg.Store.Disabled {
		s, err := store.NewStore(cfg.Store, log)
		if err != nil {
			return nil, err
		}
		rt.store = s
		persister = s
	}

	rt.manager = compile.NewManager(rt.source, persister, rt.compileOptions())
	log.Debug().Str("source", rt.source.Name()).Bool("store", rt.store != nil).Msg("runtime ready")
	return rt, nil
}

func (rt *app) compileOptions() compile.Options {
	return compile.Options{
		Workers: rt.cfg.Compile.Workers,
		Logger:  rt.log,
		Metrics: rt.metrics,
	}
}

func (rt *app) requireStore() (*store.Store, error) {
	if rt.store == nil {
		return nil, fmt.Errorf("the dictionary store is disabled")
	}
	return rt.store, nil
}

func (rt *app) close() error {
	var firstErr error
	if path := viper.GetString("metrics_file"); path != "" {
		if err := rt.metrics.WriteTextfile(path); err != nil {
			firstErr = fmt.Errorf("writing metrics: %w", err)
		}
	}
	if rt.store != nil {
		if err := rt.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
