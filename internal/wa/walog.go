package wa

import (
	"fmt"

	"github.com/rs/zerolog"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// zlog routes whatsmeow's internal logging into zerolog.
type zlog struct {
	log zerolog.Logger
}

func newWALogger(l zerolog.Logger) waLog.Logger {
	return zlog{log: l}
}

func (z zlog) Errorf(msg string, args ...interface{}) { z.log.Error().Msg(fmt.Sprintf(msg, args...)) }
func (z zlog) Warnf(msg string, args ...interface{})  { z.log.Warn().Msg(fmt.Sprintf(msg, args...)) }
func (z zlog) Infof(msg string, args ...interface{})  { z.log.Info().Msg(fmt.Sprintf(msg, args...)) }
func (z zlog) Debugf(msg string, args ...interface{}) { z.log.Debug().Msg(fmt.Sprintf(msg, args...)) }

func (z zlog) Sub(module string) waLog.Logger {
	return zlog{log: z.log.With().Str("module", module).Logger()}
}
