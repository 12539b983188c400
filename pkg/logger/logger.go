package logger

// LoggerInstance defines the interface for logging backends.
type LoggerInstance interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

// Logger holds multiple logging backends and dispatches log calls to all of them.
type Logger struct {
	instances []LoggerInstance
	keyvals   []any
}

var singleton *Logger

// Init initializes the global logger with one or more logging backends.
// Until Init is called all logging functions are no-ops.
func Init(instances ...LoggerInstance) {
	singleton = &Logger{
		instances: instances,
	}
}

// With returns a logger that prepends keyvals to every entry it writes to
// the global backends.
func With(keyvals ...any) *Logger {
	l := &Logger{keyvals: keyvals}
	if singleton != nil {
		l.instances = singleton.instances
		l.keyvals = append(append([]any{}, singleton.keyvals...), keyvals...)
	}
	return l
}

func (l *Logger) dispatch(write func(LoggerInstance, string, ...any), message string, keyvals []any) {
	if l == nil {
		return
	}
	if len(l.keyvals) > 0 {
		keyvals = append(append([]any{}, l.keyvals...), keyvals...)
	}
	for _, instance := range l.instances {
		write(instance, message, keyvals...)
	}
}

func (l *Logger) Log(message string, keyvals ...any) {
	l.dispatch(LoggerInstance.Log, message, keyvals)
}

func (l *Logger) Debug(message string, keyvals ...any) {
	l.dispatch(LoggerInstance.Debug, message, keyvals)
}

func (l *Logger) Info(message string, keyvals ...any) {
	l.dispatch(LoggerInstance.Info, message, keyvals)
}

func (l *Logger) Warn(message string, keyvals ...any) {
	l.dispatch(LoggerInstance.Warn, message, keyvals)
}

func (l *Logger) Error(message string, keyvals ...any) {
	l.dispatch(LoggerInstance.Error, message, keyvals)
}

func (l *Logger) Fatal(message string, keyvals ...any) {
	l.dispatch(LoggerInstance.Fatal, message, keyvals)
}

// Log writes a message at the default log level to all configured backends.
func Log(message string, keyvals ...any) {
	singleton.Log(message, keyvals...)
}

// Info writes a message at INFO level to all configured backends.
func Info(message string, keyvals ...any) {
	singleton.Info(message, keyvals...)
}

// Warn writes a message at WARN level to all configured backends.
func Warn(message string, keyvals ...any) {
	singleton.Warn(message, keyvals...)
}

// Error writes a message at ERROR level to all configured backends.
func Error(message string, keyvals ...any) {
	singleton.Error(message, keyvals...)
}

// Debug writes a message at DEBUG level to all configured backends.
func Debug(message string, keyvals ...any) {
	singleton.Debug(message, keyvals...)
}

// Fatal writes a message at FATAL level and terminates the program.
func Fatal(message string, keyvals ...any) {
	singleton.Fatal(message, keyvals...)
}
