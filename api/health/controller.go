// Package health 提供存活、就绪和详细健康检查接口
package health

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"storefront/config"
	"storefront/infrastructure/outbox"

	"github.com/gin-gonic/gin"
)

const (
	checkTimeout = 2 * time.Second

	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
	StatusUnknown   = "unknown"
)

// DefaultBacklogWarn 积压超过该值时 outbox 检查报 degraded
const DefaultBacklogWarn = 1000

// Pinger 通常是 gorm 底层的 *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Check 单项检查结果
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// probe 一项检查；critical 失败时整体 unhealthy，就绪探针也失败
type probe struct {
	name     string
	critical bool
	run      func(ctx context.Context) Check
}

type Controller struct {
	config    *config.Config
	probes    []probe
	startTime time.Time
}

// NewController db 或 backlog 为 nil 时跳过对应检查。
// outbox 积压只做展示，不影响整体状态
func NewController(cfg *config.Config, db Pinger, backlog outbox.PendingCounter) *Controller {
	c := &Controller{config: cfg, startTime: time.Now()}
	if db != nil {
		c.probes = append(c.probes, probe{name: "database", critical: true, run: pingCheck(db)})
	}
	if backlog != nil {
		c.probes = append(c.probes, probe{name: "outbox", run: backlogCheck(backlog, DefaultBacklogWarn)})
	}
	return c
}

func (c *Controller) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health", c.Health)
	router.GET("/health/live", c.Liveness)
	router.GET("/health/ready", c.Readiness)
}

type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Uptime    string           `json:"uptime"`
	Timestamp string           `json:"timestamp"`
	Checks    map[string]Check `json:"checks,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
}

// run 执行检查；onlyCritical 时跳过展示性检查
func (c *Controller) run(ctx context.Context, onlyCritical bool) (map[string]Check, bool) {
	checks := make(map[string]Check, len(c.probes))
	healthy := true
	for _, p := range c.probes {
		if onlyCritical && !p.critical {
			continue
		}
		pctx, cancel := context.WithTimeout(ctx, checkTimeout)
		check := p.run(pctx)
		cancel()

		checks[p.name] = check
		if p.critical && check.Status != StatusHealthy {
			healthy = false
		}
	}
	return checks, healthy
}

// Health 完整检查，开发环境附带运行时信息
func (c *Controller) Health(ctx *gin.Context) {
	checks, healthy := c.run(ctx.Request.Context(), false)

	resp := HealthResponse{
		Status:    StatusHealthy,
		Version:   c.config.App.Version,
		Uptime:    time.Since(c.startTime).Truncate(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
	if c.config.IsDevelopment() {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		resp.System = &SystemInfo{
			GoVersion:    runtime.Version(),
			NumCPU:       runtime.NumCPU(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     memStats.Alloc,
		}
	}

	status := http.StatusOK
	if !healthy {
		resp.Status = StatusUnhealthy
		status = http.StatusServiceUnavailable
	}
	ctx.JSON(status, resp)
}

// Liveness Kubernetes liveness probe
func (c *Controller) Liveness(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness Kubernetes readiness probe，只看关键依赖
func (c *Controller) Readiness(ctx *gin.Context) {
	checks, healthy := c.run(ctx.Request.Context(), true)
	if !healthy {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func pingCheck(db Pinger) func(ctx context.Context) Check {
	return func(ctx context.Context) Check {
		start := time.Now()
		err := db.PingContext(ctx)
		latency := time.Since(start).String()
		if err != nil {
			return Check{Status: StatusUnhealthy, Message: err.Error(), Latency: latency}
		}
		return Check{Status: StatusHealthy, Latency: latency}
	}
}

func backlogCheck(counter outbox.PendingCounter, warnAt int64) func(ctx context.Context) Check {
	return func(ctx context.Context) Check {
		pending, err := counter.CountPending(ctx)
		if err != nil {
			return Check{Status: StatusUnknown, Message: err.Error()}
		}
		status := StatusHealthy
		if pending > warnAt {
			status = StatusDegraded
		}
		return Check{Status: status, Message: fmt.Sprintf("%d pending messages", pending)}
	}
}
