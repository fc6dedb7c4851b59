package logging

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"
)

type contextKey int

const loggerKey contextKey = iota

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// Ctx is a shorter alias for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithField adds a single field to the logger in the context.
func WithField(ctx context.Context, key string, value any) context.Context {
	logger := addField(FromContext(ctx).With(), key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithFields adds structured fields to the logger in the context.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	logCtx := FromContext(ctx).With()
	for key, value := range fields {
		logCtx = addField(logCtx, key, value)
	}
	logger := logCtx.Logger()
	return WithLogger(ctx, &logger)
}

// WithCourse scopes the context logger to a course.
func WithCourse(ctx context.Context, courseID string) context.Context {
	return WithField(ctx, "course_id", courseID)
}

// WithAssignment scopes the context logger to an assignment.
func WithAssignment(ctx context.Context, assignmentID int64, name string) context.Context {
	return WithFields(ctx, map[string]any{
		"assignment_id":   strconv.FormatInt(assignmentID, 10),
		"assignment_name": name,
	})
}

// WithStudent scopes the context logger to a student.
func WithStudent(ctx context.Context, studentID int64, sortableName string) context.Context {
	return WithFields(ctx, map[string]any{
		"student_id": strconv.FormatInt(studentID, 10),
		"student":    sortableName,
	})
}

// WithOperation adds operation context to the logger.
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}
