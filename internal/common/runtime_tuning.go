package common

import (
	"os"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

// Runtime profiles for different server configurations
const (
	// Small server: 2 vCPU, 4GB RAM (test/dev environment)
	smallServerGOGC     = 500
	smallServerMemLimit = 2.5 * 1024 * 1024 * 1024

	// Larger servers
	mediumServerGOGC     = 800
	mediumServerMemLimit = 8 * 1024 * 1024 * 1024
	largeServerGOGC      = 1000
	largeServerMemLimit  = 16 * 1024 * 1024 * 1024
)

func detectServerProfile() (gogc int, memLimit int64, maxProcs int) {
	totalCPU := runtime.NumCPU()

	switch {
	case totalCPU <= 2:
		return smallServerGOGC, int64(smallServerMemLimit), 1
	case totalCPU <= 8:
		return mediumServerGOGC, int64(mediumServerMemLimit), totalCPU / 2
	default:
		return largeServerGOGC, int64(largeServerMemLimit), totalCPU / 2
	}
}

// InitRuntime configures the Go runtime for a latency-sensitive API server.
// Automatically detects a server profile; overridable with the standard
// GOGC, GOMAXPROCS and GOMEMLIMIT environment variables.
func InitRuntime() {
	defaultGOGC, defaultMemLimit, defaultMaxProcs := detectServerProfile()

	if gcPercent := os.Getenv("GOGC"); gcPercent == "" {
		debug.SetGCPercent(defaultGOGC)
		log.Info().Int("GOGC", defaultGOGC).Msg("[runtime] set GOGC")
	}

	if maxProcs := os.Getenv("GOMAXPROCS"); maxProcs == "" {
		if defaultMaxProcs < 1 {
			defaultMaxProcs = 1
		}
		runtime.GOMAXPROCS(defaultMaxProcs)
		log.Info().
			Int("GOMAXPROCS", defaultMaxProcs).
			Int("total_cpu", runtime.NumCPU()).
			Msg("[runtime] set GOMAXPROCS")
	}

	// GOMEMLIMIT acts as the safety net for the high GOGC setting.
	if memLimit := os.Getenv("GOMEMLIMIT"); memLimit == "" {
		debug.SetMemoryLimit(defaultMemLimit)
		log.Info().
			Int64("GOMEMLIMIT_bytes", defaultMemLimit).
			Msg("[runtime] set memory limit")
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	log.Info().
		Int("num_cpu", runtime.NumCPU()).
		Int("gomaxprocs", runtime.GOMAXPROCS(0)).
		Uint64("heap_alloc_mb", memStats.HeapAlloc/1024/1024).
		Str("go_version", runtime.Version()).
		Msg("[runtime] current runtime settings")
}
