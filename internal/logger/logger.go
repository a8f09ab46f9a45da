package logger

import "go.uber.org/zap"

var log *zap.SugaredLogger

func Init() {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	log = l.Sugar()
}

func Info(msg string, kv ...interface{}) {
	log.Infow(msg, kv...)
}

func Warn(msg string, kv ...interface{}) {
	log.Warnw(msg, kv...)
}

// Error is reserved for security-relevant events (signature mismatches etc.)
// so they can be routed separately from ordinary warnings.
func Error(msg string, kv ...interface{}) {
	log.Errorw(msg, kv...)
}
