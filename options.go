package camelalloc

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	fatalHandler     func(*FatalError)
	memoryLimit      int64
	mapsPerSecond    float64
	roundToClass     bool
	overlapCheck     bool
}

// Option configures an Allocator.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

// WithLogger sets the structured logger.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
//
// If nil is passed, metrics are discarded.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithFatalHandler sets the function called on unrecoverable errors before the
// allocator panics. A handler that never returns (os.Exit, a debugger trap)
// halts the process; a handler that returns still cannot resume allocation.
func WithFatalHandler(fn func(*FatalError)) Option {
	return func(o *options) {
		o.fatalHandler = fn
	}
}

// WithMemoryLimit caps the bytes all arenas may map together.
// Refused growth is an ordinary allocation failure, never fatal.
//
// If limit <= 0, only the fixed arena ceilings apply.
func WithMemoryLimit(limit int64) Option {
	return func(o *options) {
		o.memoryLimit = limit
	}
}

// WithMapRateLimit caps how many chunks may be mapped per second across all
// arenas.
func WithMapRateLimit(perSecond float64) Option {
	return func(o *options) {
		o.mapsPerSecond = perSecond
	}
}

// WithSizeClassRounding rounds every request up to its size class before it
// reaches an arena.
func WithSizeClassRounding() Option {
	return func(o *options) {
		o.roundToClass = true
	}
}

// WithOverlapCheck records every handed-out region and treats an overlap as
// fatal. Meant for debugging; it costs a bitmap update per allocation.
func WithOverlapCheck() Option {
	return func(o *options) {
		o.overlapCheck = true
	}
}
