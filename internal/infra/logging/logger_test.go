package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/geocheckin/internal/domain"
	context_ "github.com/mkrupp/geocheckin/internal/infra/context"
	"github.com/mkrupp/geocheckin/internal/infra/logging"
)

func configure(t *testing.T, cfg logging.LoggerConfig) *bytes.Buffer {
	t.Helper()

	buf := new(bytes.Buffer)
	cfg.OutputHandle = buf

	logging.Configure(context.Background(), cfg, "test")
	buf.Reset()

	return buf
}

//nolint:paralleltest
func TestConsoleHandler_PkgLevels(t *testing.T) {
	buf := configure(t, logging.LoggerConfig{Level: "debug", Filter: "repo:warn,repo.venue:debug"})

	logging.GetLogger("repo.store").Info("dropped")
	logging.GetLogger("repo.venue").Debug("kept venue")
	logging.GetLogger("svc.authsvc").Debug("kept svc")
	logging.GetLogger("repo.user").Warn("kept warn")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept venue")
	assert.Contains(t, out, "kept svc")
	assert.Contains(t, out, "kept warn")
}

//nolint:paralleltest
func TestTracingHandler(t *testing.T) {
	buf := configure(t, logging.LoggerConfig{Level: "info", JSON: true})

	ctx := context_.WithTraceID(context.Background(), "trace-1")
	ctx = context_.WithSession(ctx, "token", &domain.User{ID: 7, Email: "ann@example.com"})

	logging.GetLogger("svc.checkinsvc").InfoContext(ctx, "checked in")

	var record struct {
		Msg     string `json:"msg"`
		App     string `json:"app"`
		Logger  string `json:"logger"`
		Trace   struct{ ID string } `json:"trace"`
		Session struct {
			UserID int64 `json:"userID"`
		} `json:"session"`
	}

	line := strings.TrimSpace(buf.String())
	require.NoError(t, json.Unmarshal([]byte(line), &record), line)

	assert.Equal(t, "checked in", record.Msg)
	assert.Equal(t, "test", record.App)
	assert.Equal(t, "svc.checkinsvc", record.Logger)
	assert.Equal(t, "trace-1", record.Trace.ID)
	assert.Equal(t, int64(7), record.Session.UserID)
	assert.NotContains(t, line, "token")
}

//nolint:paralleltest
func TestGetLogger_Discard(t *testing.T) {
	logging.Configure(context.Background(), logging.LoggerConfig{Output: "discard"}, "test")

	log := logging.GetLogger("anything")
	assert.False(t, log.Enabled(context.Background(), logging.LevelError))
}
