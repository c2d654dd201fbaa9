package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"sheetrun/internal/config"
)

func observe(t *testing.T, lc config.LoggingConfig) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	Use(zap.New(core), lc)
	t.Cleanup(func() { Use(nil, config.LoggingConfig{}) })
	return logs
}

func TestGet_NamesLoggerByCategory(t *testing.T) {
	logs := observe(t, config.LoggingConfig{})

	Get(CategoryRunner).Info("case finished", zap.String("id", "POS_FUN_001"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "runner", entry.LoggerName)
	assert.Equal(t, "POS_FUN_001", entry.ContextMap()["id"])
}

func TestGet_DisabledCategoryIsNoop(t *testing.T) {
	logs := observe(t, config.LoggingConfig{
		Categories: map[string]bool{"browser": false},
	})

	Get(CategoryBrowser).Error("should not appear")
	Get(CategorySheet).Info("loaded")

	assert.False(t, IsCategoryEnabled(CategoryBrowser))
	assert.True(t, IsCategoryEnabled(CategorySheet))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "sheet", logs.All()[0].LoggerName)
}

func TestUse_NilFallsBackToNop(t *testing.T) {
	Use(nil, config.LoggingConfig{})
	assert.NotNil(t, Base())
	assert.NotPanics(t, func() { Get(CategoryCLI).Info("ignored") })
}

func TestBuild_Levels(t *testing.T) {
	l, err := Build(config.LoggingConfig{Level: "warn"}, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = Build(config.LoggingConfig{Level: "warn"}, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel), "verbose forces debug")

	_, err = Build(config.LoggingConfig{Level: "loud"}, false)
	assert.Error(t, err)

	_, err = Build(config.LoggingConfig{Format: "xml"}, false)
	assert.Error(t, err)
}

func TestBuild_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sheetrun.log")

	l, err := Build(config.LoggingConfig{Level: "info", Format: "json", File: path}, false)
	require.NoError(t, err)
	l.Named("sheet").Info("suite loaded", zap.Int("cases", 3))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"suite loaded"`)
	assert.Contains(t, string(data), `"cases":3`)
	assert.Contains(t, string(data), `"logger":"sheet"`)
}

func TestTimer(t *testing.T) {
	logs := observe(t, config.LoggingConfig{})

	StartTimer(CategoryRunner, "load").Stop()
	require.Equal(t, 1, logs.FilterMessage("operation completed").Len())

	timer := StartTimer(CategoryRunner, "suite")
	time.Sleep(5 * time.Millisecond)
	elapsed := timer.StopWithThreshold(time.Millisecond)
	assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond)

	slow := logs.FilterMessage("operation slow").All()
	require.Len(t, slow, 1)
	assert.Equal(t, zapcore.WarnLevel, slow[0].Level)
	assert.Equal(t, "suite", slow[0].ContextMap()["op"])
}
