package telemetry

import (
	"github.com/grafana/pyroscope-go"
)

// ProfilingConfig configures the continuous profiler.
type ProfilingConfig struct {
	ServerAddress   string
	ApplicationName string
}

// StartProfiling starts the pyroscope agent; the returned profiler
// should be stopped on process shutdown.
func StartProfiling(cfg ProfilingConfig) (*pyroscope.Profiler, error) {
	return pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
}
