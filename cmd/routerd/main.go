// Command routerd is the router core's process boundary: it loads
// configuration, wires a structured logger and Prometheus registry into a
// router.Router, seeds it with a small set of example pools, and serves
// find_routes requests over the process's stdin/stdout as newline-delimited
// JSON against the wire schema defined in router/schema.go.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swaphop/router-core/config"
	"github.com/swaphop/router-core/costmodel"
	"github.com/swaphop/router-core/metrics"
	"github.com/swaphop/router-core/pool"
	"github.com/swaphop/router-core/router"
	"github.com/swaphop/router-core/token"
)

// slogLogger adapts *slog.Logger to router.Logger.
type slogLogger struct{ l *slog.Logger }

func (s slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func main() {
	rootLogHandler := slog.NewJSONHandler(os.Stdout, nil)
	rootLogger := slog.New(rootLogHandler)
	fail := func() { os.Exit(1) }

	cfg, err := loadConfig()
	if err != nil {
		rootLogger.Error("failed to load configuration", "error", err)
		fail()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	costmodel.SetExchangeGasOverrides(cfg.ExchangeGasTable)

	reg := prometheus.DefaultRegisterer
	met := metrics.NewMetrics(reg)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				rootLogger.Error("metrics server exited", "error", err)
			}
		}()
		rootLogger.Info("metrics server listening", "addr", cfg.MetricsAddr)
	}

	r := router.New(
		router.WithLogger(slogLogger{l: rootLogger.With("component", "router")}),
		router.WithMetrics(met),
		router.WithCoefficients(cfg.CostModelCoefficients()),
		router.WithDefaultK(cfg.K),
		router.WithDefaultSlippage(cfg.DefaultSlippage),
	)

	if err := seedExamplePools(r); err != nil {
		rootLogger.Error("failed to seed example pools", "error", err)
		fail()
	}

	rootLogger.Info("router ready, reading find_routes requests from stdin")
	serve(ctx, r, rootLogger)
}

func loadConfig() (config.Config, error) {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file.")
	flag.Parse()
	log.Printf("loading configuration from: %s", *configPath)
	if _, err := os.Stat(*configPath); err != nil {
		log.Printf("no config file at %s, using defaults", *configPath)
		return config.Default(), nil
	}
	return config.Load(*configPath)
}

// serve reads one JSON find_routes request per line from stdin and writes
// one JSON response per line to stdout, until ctx is cancelled or stdin is
// closed.
func serve(ctx context.Context, r *router.Router, logger *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		req, err := router.DecodeRequest(line)
		if err != nil {
			logger.Error("failed to decode request", "error", err)
			continue
		}

		result, err := r.FindRoutes(ctx, req)
		if err != nil {
			logger.Error("find_routes failed", "error", err)
			continue
		}

		resp, err := json.Marshal(router.EncodeResponse(result))
		if err != nil {
			logger.Error("failed to encode response", "error", err)
			continue
		}
		out.Write(resp)
		out.WriteString("\n")
		out.Flush()
	}
}

// seedExamplePools upserts a small illustrative liquidity graph (WETH/USDC,
// USDC/DAI, WETH/DAI) so routerd has something to route over out of the
// box; a production deployment replaces this with an external pool-discovery
// and chain-indexing feed.
func seedExamplePools(r *router.Router) error {
	weth := token.Token{ID: token.NewID(1, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), Symbol: "WETH", Decimals: 18}
	usdc := token.Token{ID: token.NewID(1, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), Symbol: "USDC", Decimals: 6}
	dai := token.Token{ID: token.NewID(1, "0x6B175474E89094C44Da98b954EedeAC495271d0F"), Symbol: "DAI", Decimals: 18}

	pow := func(n int64) *big.Int { return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil) }
	scaled := func(units int64, decimals int64) *big.Int {
		return new(big.Int).Mul(big.NewInt(units), pow(decimals))
	}

	pools := []pool.Pool{
		{
			Exchange: "uniswap", TokenA: weth, TokenB: usdc, FeeTierPpm: 3000,
			ReserveA: scaled(1000, 18), ReserveB: scaled(2_000_000, 6),
			Price: 2000, Liquidity: 4_000_000,
		},
		{
			Exchange: "uniswap", TokenA: usdc, TokenB: dai, FeeTierPpm: 500,
			ReserveA: scaled(5_000_000, 6), ReserveB: scaled(5_000_000, 18),
			Price: 1, Liquidity: 10_000_000,
		},
		{
			Exchange: "sushiswap", TokenA: weth, TokenB: dai, FeeTierPpm: 3000,
			ReserveA: scaled(800, 18), ReserveB: scaled(1_580_000, 18),
			Price: 1975, Liquidity: 3_160_000,
		},
	}

	for _, p := range pools {
		if err := r.UpsertPool(p); err != nil {
			return fmt.Errorf("seed pool %s/%s on %s: %w", p.TokenA.Symbol, p.TokenB.Symbol, p.Exchange, err)
		}
	}
	return nil
}
