package server

import (
	"bytes"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mostviewed/internal/models"
	"mostviewed/internal/render"
)

func (s *Server) setupRoutes(router *gin.Engine) {
	router.GET("/", s.handlePage)
	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	api.GET("/articles", s.handleArticles)
	api.GET("/markdown", s.handleMarkdown)
}

// view reads the rows and attaches the run notices. A read failure becomes an error notice.
func (s *Server) view(c *gin.Context) (*render.View, error) {
	rows, err := s.source.Ranked(c.Request.Context(), s.reserved)

	v := render.NewView(rows, s.options)
	v.Notices = append(v.Notices, s.notices...)

	if err != nil {
		s.logger.Error("failed to load articles", "error", err)
		v.AddNotice(models.NoticeError, err.Error())
	}

	return v, err
}

func (s *Server) handlePage(c *gin.Context) {
	v, err := s.view(c)

	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
	}

	var buf bytes.Buffer
	if renderErr := render.HTML(&buf, v); renderErr != nil {
		s.logger.Error("failed to render page", "error", renderErr)
		c.String(http.StatusInternalServerError, "render failed")

		return
	}

	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleArticles(c *gin.Context) {
	v, err := s.view(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "notices": v.Notices})
		return
	}

	c.JSON(http.StatusOK, v)
}

func (s *Server) handleMarkdown(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	md, err := s.source.Markdown(c.Request.Context(), title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found", "title": title})
			return
		}

		s.logger.Error("failed to load markdown", "title", title, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
