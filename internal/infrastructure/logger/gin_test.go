package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findHTTPLog(t *testing.T, recorded *observer.ObservedLogs) *observer.LoggedEntry {
	t.Helper()
	logs := recorded.All()
	for i := range logs {
		if logs[i].Message == "HTTP Request" {
			return &logs[i]
		}
	}
	t.Fatal("HTTP Request log should exist")
	return nil
}

func serveWithMiddleware(level zapcore.Level, method, target string, status int) (*httptest.ResponseRecorder, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(level)

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.Handle(method, "/stock/central", func(c *gin.Context) {
		c.JSON(status, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)
	return w, recorded
}

func TestGinMiddleware(t *testing.T) {
	w, recorded := serveWithMiddleware(zapcore.InfoLevel, "GET", "/stock/central", http.StatusOK)

	assert.Equal(t, http.StatusOK, w.Code)
	entry := findHTTPLog(t, recorded)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	fieldMap := make(map[string]zapcore.Field)
	for _, field := range entry.Context {
		fieldMap[field.Key] = field
	}
	assert.Contains(t, fieldMap, "status")
	assert.Contains(t, fieldMap, "latency")
	assert.Contains(t, fieldMap, "client_ip")
	assert.Contains(t, fieldMap, "user_agent")
	assert.Contains(t, fieldMap, "method")
	assert.Contains(t, fieldMap, "path")
}

func TestGinMiddleware_StatusLevels(t *testing.T) {
	t.Run("4xx logs as warning", func(t *testing.T) {
		_, recorded := serveWithMiddleware(zapcore.WarnLevel, "GET", "/stock/central", http.StatusBadRequest)
		assert.Equal(t, zapcore.WarnLevel, findHTTPLog(t, recorded).Level)
	})

	t.Run("5xx logs as error", func(t *testing.T) {
		_, recorded := serveWithMiddleware(zapcore.ErrorLevel, "GET", "/stock/central", http.StatusInternalServerError)
		assert.Equal(t, zapcore.ErrorLevel, findHTTPLog(t, recorded).Level)
	})
}

func TestGinMiddleware_WithRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	// Simulates the RequestID middleware running first.
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "test-req-123")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/stock/central", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/stock/central", nil)
	router.ServeHTTP(w, req)

	entry := findHTTPLog(t, recorded)
	hasRequestID := false
	for _, field := range entry.Context {
		if field.Key == "request_id" {
			hasRequestID = true
			assert.Equal(t, "test-req-123", field.String)
		}
	}
	assert.True(t, hasRequestID, "request_id should be in log fields")
}

func TestGinMiddleware_WithQuery(t *testing.T) {
	_, recorded := serveWithMiddleware(zapcore.InfoLevel, "GET", "/stock/central?lab=LAB01", http.StatusOK)

	entry := findHTTPLog(t, recorded)
	hasQuery := false
	for _, field := range entry.Context {
		if field.Key == "query" {
			hasQuery = true
			assert.Contains(t, field.String, "lab=LAB01")
		}
	}
	assert.True(t, hasQuery, "query should be in log fields")
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/panic", nil)

	assert.NotPanics(t, func() {
		router.ServeHTTP(w, req)
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Contains(t, logs[0].Message, "Panic recovered")
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, _ := observer.New(zapcore.InfoLevel)

	var retrievedLogger *zap.Logger

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/stock/central", func(c *gin.Context) {
		retrievedLogger = GetGinLogger(c)
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/stock/central", nil)
	router.ServeHTTP(w, req)

	assert.NotNil(t, retrievedLogger)
}

func TestGetGinLogger_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var retrievedLogger *zap.Logger

	router := gin.New()
	router.GET("/stock/central", func(c *gin.Context) {
		retrievedLogger = GetGinLogger(c)
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/stock/central", nil)
	router.ServeHTTP(w, req)

	// Falls back to a no-op logger rather than nil.
	require.NotNil(t, retrievedLogger)
	assert.NotPanics(t, func() {
		retrievedLogger.Info("test")
	})
}
