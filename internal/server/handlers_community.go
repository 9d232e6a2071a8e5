package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/validation"
)

func (s *Server) listCommunities(c *gin.Context) {
	list, err := s.community.List(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createCommunity(c *gin.Context) {
	var req validation.CommunityRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := s.community.Create(c.Request.Context(), userID(c), displayName(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

type joinBody struct {
	InviteCode string `json:"invite_code" binding:"required"`
}

func (s *Server) joinCommunity(c *gin.Context) {
	var body joinBody
	if !bindJSON(c, &body) {
		return
	}
	joined, err := s.community.Join(c.Request.Context(), userID(c), displayName(c), body.InviteCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, joined)
}

func (s *Server) leaveCommunity(c *gin.Context) {
	if err := s.community.Leave(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) regenerateCode(c *gin.Context) {
	code, err := s.community.RegenerateInviteCode(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invite_code": code})
}

func (s *Server) listMembers(c *gin.Context) {
	members, err := s.community.Members(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (s *Server) leaderboard(c *gin.Context) {
	kind := constants.LeaderboardKind(c.Query("kind"))
	entries, err := s.community.Leaderboard(c.Request.Context(), userID(c), c.Param("id"), kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) feed(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, apperrors.Invalid("limit", "limit must be a positive number"))
			return
		}
		limit = n
	}
	entries, err := s.community.Feed(c.Request.Context(), userID(c), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) cheer(c *gin.Context) {
	var req validation.EncouragementRequest
	if !bindJSON(c, &req) {
		return
	}
	sent, err := s.community.Cheer(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sent)
}

func (s *Server) nudge(c *gin.Context) {
	var req validation.EncouragementRequest
	if !bindJSON(c, &req) {
		return
	}
	sent, err := s.community.Nudge(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sent)
}

func (s *Server) react(c *gin.Context) {
	var req validation.ReactionRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.community.React(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// inbox lists unread encouragements unless ?all=true.
func (s *Server) inbox(c *gin.Context) {
	all, _ := strconv.ParseBool(c.DefaultQuery("all", "false"))
	entries, err := s.community.Inbox(c.Request.Context(), userID(c), !all)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

type markReadBody struct {
	IDs []string `json:"ids"`
}

func (s *Server) markRead(c *gin.Context) {
	var body markReadBody
	if c.Request.ContentLength != 0 && !bindJSON(c, &body) {
		return
	}
	n, err := s.community.MarkRead(c.Request.Context(), userID(c), body.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": n})
}
