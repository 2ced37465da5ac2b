package logging

import (
	"context"

	"go.uber.org/zap"
)

// Audit results.
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
)

// LogAuditEvent logs a structured audit event for a write against a user-owned resource.
//
// Args:
//   - action: the action performed ("update", "upload", "submit", "sign_in", ...)
//   - userID: the user performing the action
//   - resourceType: the resource kind ("profile", "avatar", "feedback", "credential")
//   - resourceID: the resource key
//   - result: AuditSuccess or AuditFailure
//   - details: optional audit-safe details; never include passwords or file contents
func LogAuditEvent(
	ctx context.Context,
	action, userID, resourceType, resourceID, result string,
	details map[string]any,
) {
	fields := []zap.Field{
		zap.String("audit.action", action),
		zap.String("audit.user_id", userID),
		zap.String("audit.resource_type", resourceType),
		zap.String("audit.resource_id", resourceID),
		zap.String("audit.result", result),
	}
	if len(details) > 0 {
		fields = append(fields, zap.Any("audit.details", details))
	}
	LoggerFromContext(ctx).Info("Audit event", fields...)
}
