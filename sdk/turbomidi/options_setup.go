package turbomidi

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/turbomidi/internal/logger"
	"github.com/leandrodaf/turbomidi/sdk/contracts"
	"go.uber.org/multierr"
)

// defaultNegotiateTimeoutMs is the default timeout for Negotiate's
// SpeedAnswer and SpeedAck waits when the caller passes 0; the speed-test
// waits always use testWindowMs.
const defaultNegotiateTimeoutMs = 30

// maxNegotiateTimeoutMs is a sanity ceiling: nothing in the protocol needs
// a wait longer than a few seconds, and a caller-supplied minutes-long
// timeout is almost always a units mistake.
const maxNegotiateTimeoutMs = 5000

var errNegotiateTimeoutTooLarge = errors.New("turbomidi: negotiate timeout is implausibly large")
var errLogLevelInvalid = errors.New("turbomidi: log level out of range")

// applyDefaultOptions folds opts onto the built-in defaults and validates
// the result, reporting every problem found instead of only the first.
func applyDefaultOptions(opts ...contracts.Option) (contracts.EngineOptions, error) {
	options := &contracts.EngineOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.NegotiateTimeoutMs == 0 {
		options.NegotiateTimeoutMs = defaultNegotiateTimeoutMs
	}

	if err := validate(*options); err != nil {
		return contracts.EngineOptions{}, err
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}

func validate(o contracts.EngineOptions) error {
	var err error
	if o.NegotiateTimeoutMs > maxNegotiateTimeoutMs {
		err = multierr.Append(err, fmt.Errorf("%w: %dms", errNegotiateTimeoutTooLarge, o.NegotiateTimeoutMs))
	}
	if o.LogLevel < contracts.InfoLevel || o.LogLevel > contracts.FatalLevel {
		err = multierr.Append(err, fmt.Errorf("%w: %d", errLogLevelInvalid, o.LogLevel))
	}
	return err
}
