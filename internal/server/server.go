// Package server exposes the tracker over a JSON HTTP API. Identity comes
// from the X-User-ID header set by the upstream identity provider.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/stride/internal/community"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/tracker"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	tracker   *tracker.Service
	community *community.Service
	router    *gin.Engine
}

func New(t *tracker.Service, c *community.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), MetricsMiddleware())
	s := &Server{tracker: t, community: c, router: router}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("HTTP server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) routes() {
	r := s.router
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1", UserMiddleware())
	{
		v1.GET("/settings", s.getSettings)
		v1.PATCH("/settings", s.updateSettings)
		v1.GET("/goal-templates", s.listTemplates)
		v1.GET("/day", s.getDay)

		goals := v1.Group("/goals")
		{
			goals.GET("", s.listGoals)
			goals.POST("", s.createGoal)
			goals.GET("/:id", s.getGoal)
			goals.PATCH("/:id", s.updateGoal)
			goals.DELETE("/:id", s.deleteGoal)
			goals.GET("/:id/projection", s.projectGoal)
			goals.GET("/:id/max-achievable", s.maxAchievable)
			goals.POST("/:id/progress", s.logProgress)
			goals.GET("/:id/weeks", s.timeline)
			goals.POST("/:id/weeks", s.logWeek)
			goals.GET("/:id/weeks/current", s.currentWeek)
			goals.GET("/:id/weeks/status", s.weekStatus)
		}

		habits := v1.Group("/habits")
		{
			habits.GET("", s.listHabits)
			habits.POST("", s.createHabit)
			habits.DELETE("/:id", s.deleteHabit)
			habits.GET("/:id/streak", s.getStreak)
			habits.GET("/:id/rate", s.getRate)
			habits.GET("/:id/milestones", s.getMilestones)
		}

		v1.POST("/logs", s.logHabit)
		v1.POST("/logs/toggle", s.toggleHabit)
		v1.POST("/snapshots/capture", s.captureSnapshots)

		achievements := v1.Group("/achievements")
		{
			achievements.GET("", s.listAchievements)
			achievements.GET("/stats", s.achievementStats)
			achievements.POST("/check", s.checkAchievements)
			achievements.POST("/revoke", s.revokeAchievements)
		}

		shields := v1.Group("/shields")
		{
			shields.GET("", s.shieldStatus)
			shields.POST("", s.useShield)
		}

		communities := v1.Group("/communities")
		{
			communities.GET("", s.listCommunities)
			communities.POST("", s.createCommunity)
			communities.POST("/join", s.joinCommunity)
			communities.POST("/:id/leave", s.leaveCommunity)
			communities.POST("/:id/invite-code", s.regenerateCode)
			communities.GET("/:id/members", s.listMembers)
			communities.GET("/:id/leaderboard", s.leaderboard)
			communities.GET("/:id/feed", s.feed)
			communities.POST("/:id/cheers", s.cheer)
			communities.POST("/:id/nudges", s.nudge)
		}

		v1.POST("/activity/:id/reactions", s.react)

		encouragements := v1.Group("/encouragements")
		{
			encouragements.GET("", s.inbox)
			encouragements.POST("/read", s.markRead)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
