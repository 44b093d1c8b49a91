// internal/health/health_test.go
package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func pass(context.Context) (Details, error) { return nil, nil }

func TestChecker(t *testing.T) {
	t.Run("reports healthy when all checks pass", func(t *testing.T) {
		// Arrange
		checker := NewChecker(zap.NewNop())
		checker.Register("mount", pass)
		checker.Register("directory", pass)

		// Act
		report := checker.Check(context.Background())

		// Assert
		assert.True(t, report.Healthy())
		assert.Len(t, report.Checks, 2)
		assert.Equal(t, "healthy", report.Checks["mount"])
		assert.Equal(t, "healthy", report.Checks["directory"])
		assert.Empty(t, report.Details)
	})

	t.Run("reports unhealthy when any check fails", func(t *testing.T) {
		// Arrange
		checker := NewChecker(zap.NewNop())
		checker.Register("directory", pass)
		checker.Register("mount", func(context.Context) (Details, error) {
			return Details{"test-nfs:/mnt": DetailUnreadable}, errors.New("stale file handle")
		})

		// Act
		report := checker.Check(context.Background())

		// Assert
		assert.Equal(t, StatusUnhealthy, report.Status)
		assert.Equal(t, "healthy", report.Checks["directory"])
		assert.Equal(t, "unhealthy: stale file handle", report.Checks["mount"])
		assert.Equal(t, DetailUnreadable, report.Details["mount"]["test-nfs:/mnt"])
	})

	t.Run("respects check timeout", func(t *testing.T) {
		// Arrange
		checker := NewChecker(nil, WithCheckTimeout(50*time.Millisecond))
		checker.Register("slow", func(context.Context) (Details, error) {
			time.Sleep(100 * time.Millisecond)
			return nil, nil
		})

		// Act
		start := time.Now()
		report := checker.Check(context.Background())
		duration := time.Since(start)

		// Assert
		assert.Equal(t, StatusUnhealthy, report.Status)
		assert.Contains(t, report.Checks["slow"], "timeout")
		assert.Less(t, duration, 90*time.Millisecond)
	})

	t.Run("runs checks in parallel", func(t *testing.T) {
		// Arrange
		checker := NewChecker(zap.NewNop())
		for i := 0; i < 5; i++ {
			checker.Register(string(rune('a'+i)), func(context.Context) (Details, error) {
				time.Sleep(50 * time.Millisecond)
				return nil, nil
			})
		}

		// Act
		start := time.Now()
		report := checker.Check(context.Background())
		duration := time.Since(start)

		// Assert - should take ~50ms not 250ms
		assert.True(t, report.Healthy())
		assert.Less(t, duration, 200*time.Millisecond)
	})

	t.Run("no checks is healthy", func(t *testing.T) {
		report := NewChecker(zap.NewNop()).Check(context.Background())
		assert.True(t, report.Healthy())
	})
}
