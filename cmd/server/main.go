package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"brokkr/internal/book"
	"brokkr/internal/engine"
	"brokkr/internal/ingress"
	"brokkr/internal/ltp"
	"brokkr/internal/notify"
	"brokkr/internal/price"
	"brokkr/internal/store"
)

func main() {
	var (
		brokers     = flag.String("brokers", "localhost:9092", "comma-separated kafka brokers")
		orderTopic  = flag.String("order-topic", "orders", "topic carrying order requests")
		group       = flag.String("group", "brokkr-engine", "ingress consumer group")
		notifyTopic = flag.String("notify-topic", "order-updates", "topic for order notifications")
		dataDir     = flag.String("data", "brokkr-data", "durable store directory")
		cycleEvery  = flag.Duration("cycle-interval", 5*time.Second, "periodic processing cycle cadence")
		priceEvery  = flag.Duration("price-interval", time.Second, "price engine cadence")
		drift       = flag.Float64("drift", 0.0001, "price walk drift")
		volatility  = flag.Float64("volatility", 0.005, "price walk base volatility")
		impact      = flag.Float64("impact", 0.01, "order imbalance impact factor")
		pretty      = flag.Bool("pretty", false, "human-readable log output")
	)
	flag.Parse()

	if *pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	st, err := store.Open(*dataDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *dataDir).Msg("could not open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("could not close store")
		}
	}()

	books := book.NewRouter()
	ltps := ltp.NewStore() // last traded prices, written by the matcher
	refs := ltp.NewStore() // synthetic reference prices, written by the price engine

	brokerList := strings.Split(*brokers, ",")
	notifier := notify.NewProducer(brokerList, *notifyTopic)
	defer func() {
		if err := notifier.Close(); err != nil {
			log.Error().Err(err).Msg("could not close notifier")
		}
	}()

	orch := engine.NewOrchestrator(books, ltps, st, st, notifier,
		engine.MarketProcessor{},
		engine.GttProcessor{},
	)

	pricer := price.NewEngine(price.Config{
		Drift:        *drift,
		Volatility:   *volatility,
		ImpactFactor: *impact,
		Interval:     *priceEvery,
	}, refs, books, st)

	consumer := ingress.NewConsumer(brokerList, *orderTopic, *group,
		books, orch, refs, st, notifier)

	t, _ := tomb.WithContext(ctx)
	t.Go(func() error { return consumer.Loop(t) })
	t.Go(func() error { return pricer.Loop(t) })
	t.Go(func() error { return orch.Loop(t, *cycleEvery) })

	log.Info().
		Strs("brokers", brokerList).
		Str("order_topic", *orderTopic).
		Msg("engine running")

	<-ctx.Done()
	t.Kill(nil)
	if err := t.Wait(); err != nil {
		log.Error().Err(err).Msg("shutdown finished with error")
	}
	log.Info().Msg("engine stopped")
}
