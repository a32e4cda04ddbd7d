package telemetry

import "log/slog"

// CronLogger adapts the process logger to the cron.Logger interface.
type CronLogger struct{}

// Info logs scheduler bookkeeping at debug level; cron is chatty.
func (CronLogger) Info(msg string, keysAndValues ...interface{}) {
	Logger().Debug("cron."+msg, keysAndValues...)
}

// Error logs scheduler failures, including recovered job panics.
func (CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]any{slog.String("error", errString(err))}, keysAndValues...)
	Logger().Error("cron."+msg, args...)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
