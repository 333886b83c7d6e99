// Package logger sets up structured JSON logging on top of log/slog and
// carries request- and task-scoped loggers through context.Context.
package logger
