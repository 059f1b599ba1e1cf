package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

type HealthChecker struct {
	infra Infrastructure
}

func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return &HealthChecker{
		infra: infra,
	}
}

func (h *HealthChecker) check(ctx context.Context) (postgresErr, redisErr error) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	pgErrs := make(chan error, 1)
	redisErrs := make(chan error, 1)

	go func() {
		pgErrs <- h.infra.Postgres().Ping(ctx)
	}()

	go func() {
		redisErrs <- h.infra.Redis().Ping(ctx)
	}()

	return <-pgErrs, <-redisErrs
}

func (h *HealthChecker) Handler(c *gin.Context) {
	postgresErr, redisErr := h.check(c.Request.Context())
	if err := errors.Join(postgresErr, redisErr); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "fail",
			"postgres": statusOf(postgresErr),
			"redis":    statusOf(redisErr),
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "pass",
		"postgres": "pass",
		"redis":    "pass",
	})
}

func statusOf(err error) string {
	if err != nil {
		return "fail"
	}
	return "pass"
}
