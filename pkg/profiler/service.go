package profiler

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	byte = 1 << (10 * iota)
	kilobyte
	megabyte
	gigabyte
	terabyte

	defaultStatsInterval = time.Minute
)

// Service opts holds configuration options for the profiler service.
type ServiceOpts struct {
	Gatherer      prometheus.Gatherer
	StatsInterval time.Duration
	Datadir       string
}

func (o ServiceOpts) validate() error {
	if len(o.Datadir) == 0 {
		return fmt.Errorf("missing profiler datadir")
	}
	if o.StatsInterval < 0 {
		return fmt.Errorf("stats interval must not be negative")
	}
	return nil
}

// ProfilerService periodically logs memory statistics of the process and,
// once stopped, dumps the metrics collected by the gatherer to a file in the
// datadir.
type ProfilerService struct {
	opts   ServiceOpts
	stopFn context.CancelFunc
	done   chan struct{}

	log  func(format string, a ...interface{})
	warn func(err error, format string, a ...interface{})
}

// NewService returns a new Profiler instance.
func NewService(opts ServiceOpts) (*ProfilerService, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.StatsInterval == 0 {
		opts.StatsInterval = defaultStatsInterval
	}
	logFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("profiler: %s", format)
		log.Debugf(format, a...)
	}
	warnFn := func(err error, format string, a ...interface{}) {
		format = fmt.Sprintf("profiler: %s", format)
		log.WithError(err).Warnf(format, a...)
	}
	return &ProfilerService{opts, nil, nil, logFn, warnFn}, nil
}

// Start starts the profiler.
func (s *ProfilerService) Start() {
	ctx, cancelStats := context.WithCancel(context.Background())
	s.stopFn = cancelStats
	s.done = make(chan struct{})
	s.enableMemoryStatistics(ctx, s.opts.StatsInterval, s.opts.Datadir)
	s.log("start")
}

// Stop stops the profiler and waits for the metrics to be dumped.
func (s *ProfilerService) Stop() {
	if s.stopFn == nil {
		return
	}
	s.stopFn()
	<-s.done
	s.stopFn = nil
	s.log("stop")
}

// enableMemoryStatistics starts a goroutine that periodically logs memory
// usage of the go process to stdout.
func (s *ProfilerService) enableMemoryStatistics(
	ctx context.Context,
	interval time.Duration,
	path string,
) {
	ticker := time.NewTicker(interval)

	go func() {
		defer close(s.done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.printMemoryStatistics()
				s.printNumOfRoutines()
			case <-ctx.Done():
				s.printMemoryStatistics()
				if _, err := s.DumpMetrics(path); err != nil {
					s.warn(err, "error while dumping metrics")
				}
				return
			}
		}
	}()
}

// printMemoryStatistics logs memory statistics to stdout.
func (s *ProfilerService) printMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	s.log(
		"total allocated: %.3fMB, heap allocated: %.3fMB, "+
			"allocated objects count: %v, freed objects count: %v",
		toMegabytes(memStats.TotalAlloc),
		toMegabytes(memStats.HeapAlloc),
		memStats.Mallocs,
		memStats.Frees,
	)
}

// printNumOfRoutines logs on stdout the number of go routines currently
// running.
func (s *ProfilerService) printNumOfRoutines() {
	s.log("num of go routines: %v", runtime.NumGoroutine())
}

// DumpMetrics writes the metrics collected by the gatherer to a new file in
// the given directory and returns its path.
func (s *ProfilerService) DumpMetrics(dir string) (string, error) {
	path := filepath.Join(dir, time.Now().Format(time.RFC3339Nano))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	metricFamily, err := s.opts.Gatherer.Gather()
	if err != nil {
		return "", err
	}
	for _, v := range metricFamily {
		if _, err := writer.WriteString(v.String() + "\n"); err != nil {
			return "", err
		}
	}

	return path, nil
}

// toMegabytes returns given memory in bytes to megabytes.
func toMegabytes(bytes uint64) float64 {
	return float64(bytes) / megabyte
}
