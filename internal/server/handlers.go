// internal/server/handlers.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chaibuddies/internal/dispatcher"
	"chaibuddies/internal/export"
	"chaibuddies/internal/personas"
	"chaibuddies/internal/prompt"
	"chaibuddies/internal/session"
)

type settingsView struct {
	Temperature float64 `json:"temperature"`
	Tone        string  `json:"tone"`
}

type sessionView struct {
	ID         string            `json:"id"`
	State      session.State     `json:"state"`
	Loading    bool              `json:"loading"`
	Active     []string          `json:"active"`
	StartLabel string            `json:"start_label"`
	Settings   settingsView      `json:"settings"`
	Messages   []session.Message `json:"messages"`
}

func viewOf(sess *session.Session) sessionView {
	active := []string{}
	for _, p := range sess.Active() {
		active = append(active, p.ID)
	}
	msgs := sess.Messages()
	if msgs == nil {
		msgs = []session.Message{}
	}
	st := sess.Settings()
	return sessionView{
		ID:         sess.ID(),
		State:      sess.State(),
		Loading:    sess.Loading(),
		Active:     active,
		StartLabel: sess.StartLabel(),
		Settings:   settingsView{Temperature: st.Temperature, Tone: st.Tone.String()},
		Messages:   msgs,
	}
}

// statusFor maps session errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, personas.ErrUnknownPersona),
		errors.Is(err, session.ErrEmptyMessage),
		errors.Is(err, session.ErrNoPersonas),
		errors.Is(err, session.ErrUnknownTone),
		errors.Is(err, dispatcher.ErrTemperatureRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// withSession resolves :id or answers 404
func (s *Server) withSession(c *gin.Context) (*session.Session, bool) {
	e, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	return e.session, true
}

func (s *Server) listPersonas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"personas": s.registry.All()})
}

func (s *Server) listCalls(c *gin.Context) {
	if s.calls == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Call log disabled"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	calls, err := s.calls.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	stats, err := s.calls.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": calls, "stats": stats})
}

func (s *Server) createSession(c *gin.Context) {
	sess := s.newSession()
	s.add(sess)
	s.logger.Printf("session %s created", sess.ID())
	c.JSON(http.StatusCreated, viewOf(sess))
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.withSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

func (s *Server) deleteSession(c *gin.Context) {
	e, ok := s.remove(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	e.session.Reset()
	close(e.closed)
	s.logger.Printf("session %s deleted", e.session.ID())
	c.Status(http.StatusNoContent)
}

type selectRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) selectPersonas(c *gin.Context) {
	sess, ok := s.withSession(c)
	if !ok {
		return
	}
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid selection"})
		return
	}
	if err := sess.SetSelection(req.IDs); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

func (s *Server) selectAll(c *gin.Context) {
	sess, ok := s.withSession(c)
	if !ok {
		return
	}
	if err := sess.SelectAll(); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

type settingsRequest struct {
	Temperature *float64 `json:"temperature"`
	Tone        *string  `json:"tone"`
}

func (s *Server) updateSettings(c *gin.Context) {
	sess, ok := s.withSession(c)
	if !ok {
		return
	}
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings"})
		return
	}

	if req.Tone != nil {
		tone, err := prompt.ParseTone(*req.Tone)
		if err != nil {
			fail(c, fmt.Errorf("%w: %v", session.ErrUnknownTone, err))
			return
		}
		if err := sess.SetTone(tone); err != nil {
			fail(c, err)
			return
		}
	}
	if req.Temperature != nil {
		if err := sess.SetTemperature(*req.Temperature); err != nil {
			fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

// Start and send block until the dispatch finishes. Staggered replies
// keep arriving afterwards over the websocket.
func (s *Server) start(c *gin.Context) {
	sess, ok := s.withSession(c)
	if !ok {
		return
	}
	if err := sess.Start(context.WithoutCancel(c.Request.Context())); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

type sendRequest struct {
	Text string `json:"text"`
}

func (s *Server) send(c *gin.Context) {
	sess, ok := s.withSession(c)
	if !ok {
		return
	}
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message"})
		return
	}
	if err := sess.Send(context.WithoutCancel(c.Request.Context()), req.Text); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

func (s *Server) reset(c *gin.Context) {
	sess, ok := s.withSession(c)
	if !ok {
		return
	}
	sess.Reset()
	c.JSON(http.StatusOK, viewOf(sess))
}

func (s *Server) transcript(c *gin.Context) {
	sess, ok := s.withSession(c)
	if !ok {
		return
	}
	t := export.FromSession(sess)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(t)))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(export.Markdown(t)))
}
