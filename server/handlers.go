package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"trust-lab/domain"
)

type metricsPayload struct {
	TypingDurationMs  int `json:"typingDurationMs"`
	TotalKeystrokes   int `json:"totalKeystrokes"`
	BackspaceCount    int `json:"backspaceCount"`
	PasteCount        int `json:"pasteCount"`
	PointerEventCount int `json:"pointerEventCount"`
	FocusEventCount   int `json:"focusEventCount"`
}

func (m *metricsPayload) toDomain() *domain.BehavioralMetrics {
	if m == nil {
		return nil
	}
	return &domain.BehavioralMetrics{
		TypingDurationMs:  m.TypingDurationMs,
		TotalKeystrokes:   m.TotalKeystrokes,
		BackspaceCount:    m.BackspaceCount,
		PasteCount:        m.PasteCount,
		PointerEventCount: m.PointerEventCount,
		FocusEventCount:   m.FocusEventCount,
	}
}

type commentRequest struct {
	PostSlug    string          `json:"postSlug" validate:"required,max=120"`
	Name        string          `json:"name" validate:"required,min=2,max=50"`
	Message     string          `json:"message" validate:"required,min=5,max=500"`
	Fingerprint string          `json:"fingerprint"`
	Metrics     *metricsPayload `json:"metrics"`
}

type contactRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=50"`
	Email       string          `json:"email" validate:"omitempty,email"`
	Message     string          `json:"message" validate:"required,min=5,max=500"`
	Fingerprint string          `json:"fingerprint"`
	Metrics     *metricsPayload `json:"metrics"`

	// Hidden form fields a human never fills in.
	HField   string `json:"h_field"`
	Honeypot string `json:"honeypot"`
	Trap     string `json:"_trap"`
}

type moderateRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type commentView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// clientIdentity extracts the caller address. Behind the reverse proxy
// the first X-Forwarded-For hop is the client; direct connections fall
// back to X-Real-IP, then to the sentinel.
func clientIdentity(c echo.Context) string {
	if fwd := c.Request().Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	if real := c.Request().Header.Get("X-Real-IP"); real != "" {
		return real
	}
	return domain.UnknownIdentity
}

func (s *Server) Health(c echo.Context) error {
	payload := map[string]any{"status": "ok"}
	if s.statsFunc != nil {
		payload["stats"] = s.statsFunc()
	}
	return c.JSON(http.StatusOK, payload)
}

func (s *Server) PostComment(c echo.Context) error {
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	submission := domain.Submission{
		PostSlug:    req.PostSlug,
		DisplayName: req.Name,
		Body:        req.Message,
		Fingerprint: req.Fingerprint,
		Metrics:     req.Metrics.toDomain(),
		NetworkID:   clientIdentity(c),
	}

	outcome, comment, err := s.service.SubmitComment(c.Request().Context(), submission)
	if err != nil {
		s.log.Error("comment submission failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	switch {
	case outcome.RateLimited:
		return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "too many submissions, slow down"})
	case outcome.Discard:
		// Success-shaped on purpose; abusers get no signal that their
		// text was rejected.
		return c.JSON(http.StatusOK, map[string]any{"success": true, "status": "discarded"})
	default:
		return c.JSON(http.StatusCreated, map[string]any{
			"success": true,
			"comment": commentView{
				ID:        comment.ID.String(),
				Name:      comment.Name,
				Message:   comment.Message,
				CreatedAt: comment.CreatedAt,
			},
			"status": string(comment.Status),
		})
	}
}

func (s *Server) GetComments(c echo.Context) error {
	slug := c.QueryParam("slug")
	if slug == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "slug query parameter is required"})
	}

	comments, err := s.comments.GetComments(slug, false)
	if err != nil {
		s.log.Error("comment listing failed", "slug", slug, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	views := lo.Map(comments, func(comment domain.Comment, _ int) commentView {
		return commentView{
			ID:        comment.ID.String(),
			Name:      comment.Name,
			Message:   comment.Message,
			CreatedAt: comment.CreatedAt,
		}
	})
	return c.JSON(http.StatusOK, map[string]any{"comments": views})
}

func (s *Server) PostContact(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	// Filled honeypot: answer success, deliver nothing.
	if req.HField != "" || req.Honeypot != "" || req.Trap != "" {
		s.log.Info("honeypot tripped", "component", "server")
		return c.JSON(http.StatusOK, map[string]any{"success": true})
	}

	submission := domain.Submission{
		DisplayName:    req.Name,
		Body:           req.Message,
		ContactAddress: req.Email,
		Fingerprint:    req.Fingerprint,
		Metrics:        req.Metrics.toDomain(),
		NetworkID:      clientIdentity(c),
	}

	outcome, err := s.service.SubmitContact(c.Request().Context(), submission)
	if err != nil {
		s.log.Error("contact submission failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	if outcome.RateLimited {
		return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "too many submissions, slow down"})
	}
	// Discarded and delivered messages look the same to the sender.
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// Moderate runs the pipeline in advisory mode: nothing is persisted and
// the rate limiter is bypassed, so operators can probe arbitrary text.
func (s *Server) Moderate(c echo.Context) error {
	var req moderateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	start := time.Now()
	outcome := s.service.Advise(c.Request().Context(), domain.Submission{Body: req.Text})
	return c.JSON(http.StatusOK, map[string]any{
		"allow":       outcome.Allow,
		"shadow_ban":  outcome.ShadowBan,
		"discard":     outcome.Discard,
		"risk":        outcome.Risk,
		"verdict":     outcome.Verdict,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}
