// Package httpserver exposes the dailydeck HTTP/JSON API.
package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/dailydeck/internal/assets"
	"github.com/and161185/dailydeck/internal/errs"
	"github.com/and161185/dailydeck/internal/model"
	"github.com/and161185/dailydeck/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth    service.AuthService
	draws   service.DrawService
	journal service.JournalService
	signKey []byte
	log     *zap.Logger
}

// New constructs a Server with injected services.
func New(auth service.AuthService, draws service.DrawService, journal service.JournalService, signKey []byte, log *zap.Logger) *Server {
	return &Server{auth: auth, draws: draws, journal: journal, signKey: signKey, log: log}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(Recover(s.log), RequestLogger(s.log))

	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/cards", serveCatalog(assets.DailyJSON))
		api.GET("/cards/lifelines", serveCatalog(assets.LifelineJSON))
		api.POST("/auth/signup", s.signup)
		api.POST("/auth/login", s.login)
	}

	authed := api.Group("/")
	authed.Use(RequireAuth(s.signKey))
	{
		authed.GET("/auth/me", s.me)
		authed.POST("/drawn-cards", s.recordDraw)
		authed.GET("/drawn-cards", s.history)
		authed.POST("/journal-entries", s.createJournal)
		authed.GET("/journal-entries/card/:drawnCardId", s.journalForCard)
		authed.PUT("/journal-entries/:id", s.updateJournal)
	}

	return r
}

func serveCatalog(raw []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", raw)
	}
}

// --- Auth ---

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (s *Server) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request body"})
		return
	}
	userID, err := s.auth.Signup(c.Request.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case isValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			s.log.Error("signup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"userId": userID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request body"})
		return
	}
	tok, u, err := s.auth.LoginWithIP(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "bad credentials"})
		case errors.Is(err, errs.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limited"})
		default:
			s.log.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken": tok.AccessToken,
		"expiresAt":   tok.ExpiresAt.UTC().Format(time.RFC3339),
		"user":        toUserResponse(u),
	})
}

func (s *Server) me(c *gin.Context) {
	userID, ok := UserIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no auth"})
		return
	}
	u, err := s.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		s.log.Error("get user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(*u))
}

// --- Drawn cards ---

type recordDrawRequest struct {
	CardType string     `json:"cardType"`
	CardID   string     `json:"cardId"`
	CardData model.Card `json:"cardData"`
}

type drawnCardResponse struct {
	ID       string     `json:"id"`
	CardID   string     `json:"cardId"`
	CardData model.Card `json:"cardData"`
	CardType string     `json:"cardType"`
	DrawnAt  string     `json:"drawnAt"`
}

func toDrawnCardResponse(d model.DrawnCard) drawnCardResponse {
	return drawnCardResponse{
		ID:       d.ID.String(),
		CardID:   d.CardID,
		CardData: d.CardData,
		CardType: string(d.CardType),
		DrawnAt:  d.DrawnAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) recordDraw(c *gin.Context) {
	userID, _ := UserIDFromCtx(c)
	var req recordDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request body"})
		return
	}
	d, err := s.draws.Record(c.Request.Context(), userID, model.CardType(req.CardType), req.CardID, req.CardData)
	if err != nil {
		if isValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("record draw failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	c.JSON(http.StatusCreated, toDrawnCardResponse(*d))
}

type historyQuery struct {
	CardType string `form:"cardType"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

func (s *Server) history(c *gin.Context) {
	userID, _ := UserIDFromCtx(c)
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad query"})
		return
	}
	items, err := s.draws.History(c.Request.Context(), userID, model.CardType(q.CardType), q.Limit, q.Offset)
	if err != nil {
		if isValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	out := make([]drawnCardResponse, 0, len(items))
	for _, d := range items {
		out = append(out, toDrawnCardResponse(d))
	}
	c.JSON(http.StatusOK, gin.H{"drawnCards": out})
}

// --- Journal ---

type createJournalRequest struct {
	DrawnCardID string `json:"drawnCardId"`
	Content     string `json:"content"`
}

type journalResponse struct {
	ID          string `json:"id"`
	DrawnCardID string `json:"drawnCardId"`
	Content     string `json:"content"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toJournalResponse(e model.JournalEntry) journalResponse {
	return journalResponse{
		ID:          e.ID.String(),
		DrawnCardID: e.DrawnCardID.String(),
		Content:     e.Content,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) createJournal(c *gin.Context) {
	userID, _ := UserIDFromCtx(c)
	var req createJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request body"})
		return
	}
	drawnCardID, err := uuid.FromString(req.DrawnCardID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad drawnCardId"})
		return
	}
	e, err := s.journal.Create(c.Request.Context(), userID, drawnCardID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "drawn card not found"})
		case errors.Is(err, errs.ErrAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "entry already exists"})
		case isValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			s.log.Error("create journal failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		}
		return
	}
	c.JSON(http.StatusCreated, toJournalResponse(*e))
}

func (s *Server) journalForCard(c *gin.Context) {
	userID, _ := UserIDFromCtx(c)
	drawnCardID, err := uuid.FromString(c.Param("drawnCardId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad drawnCardId"})
		return
	}
	e, err := s.journal.GetForCard(c.Request.Context(), userID, drawnCardID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		s.log.Error("get journal failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	c.JSON(http.StatusOK, toJournalResponse(*e))
}

type updateJournalRequest struct {
	Content string `json:"content"`
}

func (s *Server) updateJournal(c *gin.Context) {
	userID, _ := UserIDFromCtx(c)
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad id"})
		return
	}
	var req updateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request body"})
		return
	}
	e, err := s.journal.Update(c.Request.Context(), userID, id, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case isValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			s.log.Error("update journal failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		}
		return
	}
	c.JSON(http.StatusOK, toJournalResponse(*e))
}

func isValidation(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "validation:")
}
