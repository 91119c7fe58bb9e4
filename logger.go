package lingua

import (
	"context"

	"github.com/pitabwire/util"

	"github.com/pitabwire/lingua/config"
)

// LoggerContext builds a logger from cfg and attaches it to ctx. Everything
// in lingua logs through util.Log(ctx), so the returned context controls the
// engine's log output.
func LoggerContext(ctx context.Context, cfg config.ConfigurationLogLevel, opts ...util.Option) context.Context {
	if cfg != nil {
		logLevel, err := util.ParseLevel(cfg.LoggingLevel())
		if err == nil {
			opts = append(opts, util.WithLogLevel(logLevel))
		}
		opts = append(opts,
			util.WithLogTimeFormat(cfg.LoggingTimeFormat()),
			util.WithLogNoColor(!cfg.LoggingColored()))
		if cfg.LoggingShowStackTrace() {
			opts = append(opts, util.WithLogStackTrace())
		}
	}

	log := util.NewLogger(ctx, opts...)
	return util.ContextWithLogger(ctx, log)
}
