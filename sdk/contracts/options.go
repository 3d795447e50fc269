package contracts

// EngineOptions holds the configuration assembled from a call to
// turbomidi.New's variadic Option list.
type EngineOptions struct {
	// Logger receives structured diagnostics for negotiation, watchdog and
	// codec events. Defaults to a zap-backed logger if nil.
	Logger Logger

	// LogLevel is applied to Logger once it has been resolved.
	LogLevel LogLevel

	// NegotiateTimeoutMs is the default timeout passed to Negotiate when
	// callers pass 0. Spec default is 30ms.
	NegotiateTimeoutMs uint32
}

// Option mutates EngineOptions during construction.
type Option func(*EngineOptions)

// WithLogger sets the logger used by the engine.
func WithLogger(l Logger) Option {
	return func(o *EngineOptions) {
		o.Logger = l
	}
}

// WithLogLevel sets the logger's minimum level.
func WithLogLevel(level LogLevel) Option {
	return func(o *EngineOptions) {
		o.LogLevel = level
	}
}

// WithNegotiateTimeout overrides the default Negotiate timeout, in
// milliseconds, used when a caller passes 0 as the timeout argument.
func WithNegotiateTimeout(ms uint32) Option {
	return func(o *EngineOptions) {
		o.NegotiateTimeoutMs = ms
	}
}
