package service

import (
	"context"
	"time"

	"github.com/nemointern/darkpool-svc/internal/auction"
	"github.com/nemointern/darkpool-svc/internal/config"
	"github.com/nemointern/darkpool-svc/internal/data/memory"
	"github.com/nemointern/darkpool-svc/internal/data/postgres"
	"github.com/nemointern/darkpool-svc/internal/events"
	"github.com/nemointern/darkpool-svc/internal/oracle"
	"github.com/nemointern/darkpool-svc/internal/settlement"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
	"gitlab.com/distributed_lab/running"
)

type service struct {
	log          *logan.Entry
	registry     *auction.Registry
	orchestrator *auction.Orchestrator
	prices       *oracle.Client
	hub          *events.Hub
	broker       *events.NATSPublisher
	stats        *statsCollector

	processPeriod time.Duration
	refreshPeriod time.Duration
}

func newService(cfg config.Config) *service {
	log := cfg.Log()
	auctionCfg := cfg.Auction()
	ledger := cfg.Ledger()
	oracleCfg := cfg.Oracle()

	orders := memory.NewOrders()
	batches := memory.NewBatches()
	hub := events.NewHub()

	prices := oracle.NewClient(log, oracleCfg.Connector, oracleCfg.Pairs)
	settler, err := settlement.NewEVMSettler(
		log, ledger.Client, ledger.ContractAddress, ledger.Key, ledger.ChainID, ledger.RequestTimeout,
	)
	if err != nil {
		panic(errors.Wrap(err, "failed to create settler"))
	}

	orchestrator, err := auction.NewOrchestrator(auction.OrchestratorOpts{
		Log:                log,
		Orders:             orders,
		Batches:            batches,
		Engine:             auction.NewEngine(log, prices, auctionCfg.ToleranceBps),
		Settler:            settler,
		Hub:                hub,
		CommitDuration:     auctionCfg.CommitDuration,
		RevealDuration:     auctionCfg.RevealDuration,
		SettlementAttempts: auctionCfg.SettlementAttempts,
		SettlementBackoff:  auctionCfg.SettlementBackoff,
	})
	if err != nil {
		panic(errors.Wrap(err, "failed to create orchestrator"))
	}

	var broker *events.NATSPublisher
	eventsCfg := cfg.Events()
	if !eventsCfg.Disabled {
		broker, err = events.NewNATSPublisher(log, eventsCfg.URL, eventsCfg.Subject)
		if err != nil {
			panic(errors.Wrap(err, "failed to create broker publisher"))
		}
	}

	return &service{
		log:           log,
		registry:      auction.NewRegistry(log, orders, batches),
		orchestrator:  orchestrator,
		prices:        prices,
		hub:           hub,
		broker:        broker,
		stats:         newStatsCollector(log, postgres.NewHistory(cfg.DB())),
		processPeriod: auctionCfg.ProcessPeriod,
		refreshPeriod: oracleCfg.RefreshPeriod,
	}
}

func (s *service) run(ctx context.Context) error {
	s.log.Info("Service started")

	go s.stats.consume(ctx, s.hub.Subscribe(64))
	if s.broker != nil {
		defer s.broker.Close()
		go s.broker.Run(ctx, s.hub.Subscribe(64))
	}

	go running.WithBackOff(ctx, s.log, "price-refresher",
		s.refreshPrices, s.refreshPeriod, s.refreshPeriod, 5*time.Minute)

	running.WithBackOff(ctx, s.log, "batch-processor",
		s.processBatches, s.processPeriod, s.processPeriod, 5*time.Minute)
	return nil
}

func Run(cfg config.Config) {
	if err := newService(cfg).run(context.Background()); err != nil {
		panic(err)
	}
}
