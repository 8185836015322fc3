package audit

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dropDatabas3/efedauth/internal/observability/logger"
)

func TestLog_UsesContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).With(logger.RequestID("req-1")))

	Log(ctx, LoginFailed, logger.Outcome("invalid_credentials"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.LoggerName != "audit" {
		t.Fatalf("logger name = %q", e.LoggerName)
	}
	if e.Message != string(LoginFailed) {
		t.Fatalf("message = %q", e.Message)
	}
	fields := e.ContextMap()
	if fields["event"] != "auth.login.failed" || fields["request_id"] != "req-1" || fields["outcome"] != "invalid_credentials" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}
