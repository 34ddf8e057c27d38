package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerParsesLevel(t *testing.T) {
	log := NewLogger("debug", "development")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := NewLogger("shouting", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerFormatterByEnvironment(t *testing.T) {
	prod := NewLogger("info", "production")
	_, isJSON := prod.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON, "production should log JSON")

	dev := NewLogger("info", "development")
	_, isText := dev.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText, "development should log text")
}

func TestAuditLoggerUserLogin(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	audit.LogUserLogin("u_123", "alice", 10.0, false)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "u_123", logEntry["user_id"])
	assert.Equal(t, "alice", logEntry["username"])
	assert.Equal(t, false, logEntry["returning"])
}

func TestAuditLoggerBetPlaced(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	audit.LogBetPlaced("u_123", "alice", 7, "trifecta", 2.5, []int{4, 9, 12})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "trifecta", logEntry["bet_type"])
	assert.Equal(t, 2.5, logEntry["amount"])
	assert.Equal(t, float64(7), logEntry["race_id"])
}

func TestAuditLoggerRaceSettled(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	audit.LogRaceSettled(7, 85.0, 12, 40)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, 85.0, logEntry["total_paid"])
	assert.Equal(t, float64(12), logEntry["paid_bets"])
	assert.Equal(t, float64(40), logEntry["participants"])
}
