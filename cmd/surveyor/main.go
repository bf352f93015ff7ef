// Command surveyor builds or loads a structure and runs a bounded
// merge-scheduler survey over it, dumping a snapshot on completion
// when an output path is given.
// It stands in for the spec's CLI surveyor tool to the depth needed to
// drive the core end-to-end without the excluded ZMQ/HDF5 layers.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gitrdm/congru/pkg/congru"
)

func main() {
	log := buildLogger(os.Getenv("CONGRU_LOG_LEVEL"))
	defer log.Sync()
	log = log.Named("surveyor")

	itemDim, err := envUint32("CONGRU_SIZE", 1024)
	if err != nil {
		log.Error("invalid CONGRU_SIZE", zap.Error(err))
		os.Exit(1)
	}
	threads := envInt("CONGRU_THREADS", runtime.NumCPU())
	budget := envDuration("CONGRU_BUDGET", 2*time.Second)

	st := congru.NewStructure(congru.Ob(itemDim))
	sig := st.Signature()
	sig.DeclareBinaryFunction("APP")
	sig.DeclareBinaryRelation("LESS")
	sig.DeclareBinaryRelation("NLESS")
	sig.DeclareNegation("LESS", "NLESS")

	if len(os.Args) > 1 {
		if err := st.Load(os.Args[1]); err != nil {
			log.Error("snapshot load failed", zap.Error(err))
			os.Exit(1)
		}
		log.Info("loaded snapshot", zap.String("path", os.Args[1]))
	}

	sched := congru.NewScheduler(sig, log)
	sampler := congru.NewSampler(sig, rand.New(rand.NewSource(1)), map[string]float64{
		"APP": 1.0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	sched.Survey(ctx, func(ctx context.Context) ([]congru.Task, bool) {
		select {
		case <-ctx.Done():
			return nil, false
		default:
		}
		tasks := make([]congru.Task, threads)
		for i := 0; i < threads; i++ {
			tasks[i] = congru.SampleTask{Sampler: sampler}
		}
		return tasks, true
	})

	log.Info("survey complete",
		zap.Int("item_count", st.Carrier().ItemCount()),
		zap.Int("rep_count", st.Carrier().RepCount()),
	)

	if len(os.Args) > 2 {
		if err := st.Dump(os.Args[2]); err != nil {
			log.Error("snapshot dump failed", zap.Error(err))
			os.Exit(1)
		}
		log.Info("dumped snapshot", zap.String("path", os.Args[2]))
	}
}

// buildLogger mirrors the teacher pack's zap development-config idiom:
// colored level, no timestamp/caller noise, level gated by an env var.
func buildLogger(level string) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zap.Must(cfg.Build())
}

func envUint32(name string, def uint32) (uint32, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return uint32(n), nil
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
