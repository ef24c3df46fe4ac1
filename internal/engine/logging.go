package engine

import "go.uber.org/zap"

// logger is package-wide so workers and the coordinator share one sink
// without threading a *zap.Logger through every constructor. Defaults to
// a no-op logger so library consumers who never call SetLogger pay
// nothing for it.
var logger *zap.Logger = zap.NewNop()

// SetLogger installs the logger used for engine/worker/coordinator
// diagnostics. Passing nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		logger = zap.NewNop()
		return
	}
	logger = l
}
