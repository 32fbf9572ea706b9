package aws

import (
	"github.com/aws/smithy-go/logging"
	"github.com/rs/zerolog"
)

// SDKLogger routes AWS SDK client logs through zerolog
type SDKLogger struct {
	logger zerolog.Logger
}

// NewSDKLogger creates an SDK logger tagged with component=aws-sdk
func NewSDKLogger(logger zerolog.Logger) SDKLogger {
	return SDKLogger{
		logger: logger.With().Str("component", "aws-sdk").Logger(),
	}
}

// Logf implements logging.Logger
func (l SDKLogger) Logf(classification logging.Classification, format string, v ...interface{}) {
	if classification == logging.Warn {
		l.logger.Warn().Msgf(format, v...)
		return
	}
	l.logger.Debug().Msgf(format, v...)
}

var _ logging.Logger = SDKLogger{}
