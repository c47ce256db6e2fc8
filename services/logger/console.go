package logsvc

import (
	"fmt"
	"os"

	"github.com/labstack/gommon/log"

	"github.com/mathstutor/mathstutor-go/core"
)

// ConsoleLogger writes leveled, colorized output to stderr.
type ConsoleLogger struct {
	l *log.Logger
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(conf *core.Config) *ConsoleLogger {
	l := log.New(conf.AppName)
	l.SetOutput(os.Stderr)
	l.SetHeader("${time_rfc3339} ${level} ${prefix}")
	if conf.Debug {
		l.SetLevel(log.DEBUG)
	} else {
		l.SetLevel(log.INFO)
	}
	return &ConsoleLogger{l: l}
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	out := msg
	for _, arg := range args {
		out += fmt.Sprintf(" %+v", arg)
	}
	return out
}

func (cl *ConsoleLogger) Debug(msg string, args ...interface{}) { cl.l.Debug(format(msg, args)) }
func (cl *ConsoleLogger) Info(msg string, args ...interface{})  { cl.l.Info(format(msg, args)) }
func (cl *ConsoleLogger) Warn(msg string, args ...interface{})  { cl.l.Warn(format(msg, args)) }
func (cl *ConsoleLogger) Error(msg string, args ...interface{}) { cl.l.Error(format(msg, args)) }
func (cl *ConsoleLogger) Fatal(msg string, args ...interface{}) { cl.l.Fatal(format(msg, args)) }
