// Package app assembles the simulation service from its parts: engine, event
// bus, metric sinks, MQTT publisher and the HTTP API.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apisim "github.com/ridegrid/ridegrid/api/sim"
	"github.com/ridegrid/ridegrid/config"
	coremetrics "github.com/ridegrid/ridegrid/core/metrics"
	"github.com/ridegrid/ridegrid/core/sim"
	"github.com/ridegrid/ridegrid/infra/logger"
	"github.com/ridegrid/ridegrid/infra/metrics"
	"github.com/ridegrid/ridegrid/infra/mqtt"
	"github.com/ridegrid/ridegrid/internal/eventbus"
)

// Service owns the running simulation and its boundary adapters.
type Service struct {
	Engine *sim.Engine

	cfg       *config.Config
	bus       eventbus.EventBus
	sink      coremetrics.MetricsSink
	publisher mqtt.Publisher
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	bus := eventbus.New()

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	engine, err := sim.NewEngine(cfg.Simulation, logger.New("engine"), bus)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	svc := &Service{Engine: engine, cfg: cfg, bus: bus, sink: sink, log: logg}
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Run starts the boundary adapters and blocks until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.publisher != nil {
		go s.forwardEvents(ctx)
	}
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.API.AutoTick {
		go s.autoTick(ctx)
	}

	handler := apisim.NewHandler(s.Engine, logger.New("api"))
	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: handler.Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Infof("simulation API listening on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// autoTick advances the simulation on the configured interval. The interval
// only paces this loop; the engine itself is tick-driven.
func (s *Service) autoTick(ctx context.Context) {
	interval := time.Duration(s.Engine.Config().TickIntervalMS) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Engine.AdvanceTick()
			// Pick up interval changes applied through the config endpoint.
			if next := time.Duration(s.Engine.Config().TickIntervalMS) * time.Millisecond; next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

// forwardEvents republishes bus events to the MQTT broker.
func (s *Service) forwardEvents(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			topic := mqtt.TopicFor(ev)
			if topic == "" {
				continue
			}
			if err := s.publisher.PublishEvent(topic, ev); err != nil {
				s.log.Errorf("mqtt publish %s: %v", topic, err)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Close()
	}
	s.bus.Close()
	return nil
}
