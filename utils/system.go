package utils

import (
	"fmt"
	"log/slog"
	"runtime"
)

func GetMemUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	// For info on each, see: https://golang.org/pkg/runtime/#MemStats
	return fmt.Sprintf("Alloc = %v MiB TotalAlloc = %v MiB Sys = %v MiB NumGC = %v",
		bToMb(m.Alloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC)
}

// MemUsageAttr reports the same figures as GetMemUsage as a log group
func MemUsageAttr() slog.Attr {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return slog.Group("mem",
		slog.Uint64("allocMiB", bToMb(m.Alloc)),
		slog.Uint64("totalAllocMiB", bToMb(m.TotalAlloc)),
		slog.Uint64("sysMiB", bToMb(m.Sys)),
		slog.Uint64("numGC", uint64(m.NumGC)),
	)
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
