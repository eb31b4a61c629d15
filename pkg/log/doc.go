/*
Package log wraps zerolog with Loom's logging conventions: a global
logger configured once via Init, and component/iteration/operation
scoped child loggers for everything else.

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: os.Stdout})

	schedulerLog := log.WithComponent("scheduler")
	schedulerLog.Debug().Uint64("seed", seed).Msg("iteration attached")

	opLog := log.WithOperationID(3)
	opLog.Debug().Msg("waiting on resource")

Component loggers compose: WithComponent("scheduler").With().Int("iteration", n).Logger()
adds fields without losing the component tag.
*/
package log
