package logsvc

import (
	"sync"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
)

// RollbarLogger reports to Rollbar and mirrors every line to a zap logger.
type RollbarLogger struct {
	zl *zap.SugaredLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(zl *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !(conf.Debug || conf.TestMode))
	return &RollbarLogger{zl: zl.Sugar()}
}

// NewZapLogger builds the process logger: human readable in debug mode, JSON otherwise.
func NewZapLogger(conf *core.Config) (*zap.Logger, error) {
	if conf.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (l RollbarLogger) Sync() error {
	rollbar.Wait()
	return l.zl.Sync()
}

// guards rollbar-go's package-level person between set and report
var rollbarMu sync.Mutex

// expected fmt: msg | error, map[string]interface{}, user.Profile
func (l RollbarLogger) report(send func(...interface{}), msg string, args []interface{}) []interface{} {
	var prof *user.Profile
	rbArgs := make([]interface{}, 0, len(args)+1)
	rbArgs = append(rbArgs, msg)
	fields := make([]interface{}, 0, 2*len(args))

	for _, arg := range args {
		switch v := arg.(type) {
		case user.Profile:
			if prof == nil { // only set one user
				prof = &v
				fields = append(fields, "user_id", v.ID)
			}
			continue
		case error:
			fields = append(fields, "error", v)
		case map[string]interface{}:
			for key, val := range v {
				fields = append(fields, key, val)
			}
		default:
			fields = append(fields, "extra", v)
		}
		rbArgs = append(rbArgs, arg)
	}

	rollbarMu.Lock()
	defer rollbarMu.Unlock()
	if prof != nil {
		rollbar.SetPerson(prof.ID, prof.Username, prof.Email)
	} else {
		rollbar.ClearPerson()
	}
	send(rbArgs...)
	return fields
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.zl.Debugw(msg, l.report(rollbar.Debug, msg, args)...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.zl.Infow(msg, l.report(rollbar.Info, msg, args)...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.zl.Warnw(msg, l.report(rollbar.Warning, msg, args)...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.zl.Errorw(msg, l.report(rollbar.Error, msg, args)...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	fields := l.report(rollbar.Critical, msg, args)
	rollbar.Wait()
	l.zl.Fatalw(msg, fields...)
}
