package server

import (
	"context"
	"errors"
	"html"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

// Submission types.
const (
	TypeContact = "contact"
	TypeComment = "comment"
)

// Field limits for contact and comment submissions.
const (
	MaxNameLength    = 100
	MaxEmailLength   = 254
	MinMessageLength = 10
	MaxMessageLength = 2000
)

// Response messages.
const (
	msgContactSent   = "Message sent successfully"
	msgCommentSent   = "Comment submitted successfully"
	msgTooMany       = "Too many requests. Please try again later."
	msgInvalid       = "Validation failed"
	msgInvalidBody   = "Invalid request body"
	msgCommentFailed = "Failed to submit comment"
)

// notifyTimeout bounds the SMTP exchange inside a request.
const notifyTimeout = 10 * time.Second

// postTypes are the accepted comment targets.
var postTypes = []any{"post", "project", "creative"}

// ContactRequest is the body of POST /api/contact.
type ContactRequest struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	PostSlug string `json:"postSlug"`
	PostType string `json:"postType"`
	Honeypot string `json:"honeypot"`
}

// IsComment reports whether the request targets a document.
func (r ContactRequest) IsComment() bool {
	return strings.EqualFold(strings.TrimSpace(r.Type), TypeComment)
}

// Validate checks the trimmed fields. Comments additionally need a target.
func (r ContactRequest) Validate() error {
	r.trim()
	rules := []*validation.FieldRules{
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, MaxNameLength)),
		validation.Field(&r.Email, validation.Required, validation.Length(1, MaxEmailLength), is.EmailFormat),
		validation.Field(&r.Message, validation.Required, validation.RuneLength(MinMessageLength, MaxMessageLength)),
	}
	if r.IsComment() {
		rules = append(rules,
			validation.Field(&r.PostSlug, validation.Required),
			validation.Field(&r.PostType, validation.Required, validation.In(postTypes...)),
		)
	}
	return validation.ValidateStruct(&r, rules...)
}

func (r *ContactRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Message = strings.TrimSpace(r.Message)
	r.PostSlug = strings.TrimSpace(r.PostSlug)
	r.PostType = strings.ToLower(strings.TrimSpace(r.PostType))
}

// fieldErrors flattens ozzo errors into a stable, field-sorted list.
func fieldErrors(err error) []FieldError {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for field, ferr := range verrs {
		out = append(out, FieldError{Field: field, Message: ferr.Error()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

var (
	scriptScheme  = regexp.MustCompile(`(?i)javascript:`)
	eventHandlers = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// Sanitizer strips markup from submitted text.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer uses the bluemonday strict policy.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text removes tags, script schemes and inline handlers, then trims and
// caps the result at MaxMessageLength runes. Entities produced by the
// policy are decoded; output is escaped where it is rendered.
func (s *Sanitizer) Text(in string) string {
	out := html.UnescapeString(s.policy.Sanitize(in))
	out = strings.NewReplacer("<", "", ">", "").Replace(out)
	out = scriptScheme.ReplaceAllString(out, "")
	out = eventHandlers.ReplaceAllString(out, "")
	out = strings.TrimSpace(out)
	if r := []rune(out); len(r) > MaxMessageLength {
		out = string(r[:MaxMessageLength])
	}
	return out
}

// Submission sanitizes r into a Submission received at now.
func (s *Sanitizer) Submission(r ContactRequest, now time.Time) Submission {
	r.trim()
	sub := Submission{
		Type:       TypeContact,
		Name:       s.Text(r.Name),
		Email:      strings.ToLower(r.Email),
		Message:    s.Text(r.Message),
		ReceivedAt: now,
	}
	if r.IsComment() {
		sub.Type = TypeComment
		sub.PostSlug = s.Text(r.PostSlug)
		sub.PostType = r.PostType
	}
	return sub
}

var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:viagra|cialis|loan|casino|betting|crypto|bitcoin)\b`),
	regexp.MustCompile(`(?i)\b(?:click here|buy now|free money|make money fast)\b`),
	regexp.MustCompile(`(?i)\b(?:seo|backlinks|website promotion)\b`),
}

// urlPattern finds links; allowedHosts lists the domains that are not spam.
var (
	urlPattern   = regexp.MustCompile(`(?i)https?://([\w.-]+)`)
	allowedHosts = []string{"github.com", "linkedin.com", "behance.net", "behance.com", "instagram.com", "twitter.com", "x.com"}
)

// IsSpam reports whether the submission matches a spam keyword or links
// outside the allowed social hosts.
func IsSpam(s Submission) bool {
	text := s.Name + " " + s.Email + " " + s.Message
	for _, p := range spamPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	for _, m := range urlPattern.FindAllStringSubmatch(text, -1) {
		if !allowedHost(strings.ToLower(m[1])) {
			return true
		}
	}
	return false
}

func allowedHost(host string) bool {
	for _, h := range allowedHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// ContactResponse is the body of a successful POST /api/contact.
type ContactResponse struct {
	Message           string `json:"message"`
	EmailSent         bool   `json:"emailSent"`
	RemainingRequests int    `json:"remainingRequests"`
}

func (s *Server) handleContact(c echo.Context) error {
	ctx := c.Request().Context()
	ip := ClientIP(c)

	decision, err := s.limiter.Allow(ctx, ip)
	if err != nil {
		s.contactLog.Error("rate limiter unavailable", "ip", ip, "error", err)
		decision = Decision{Allowed: true}
	}
	if !decision.Allowed {
		s.contactLog.Warn("rate limit exceeded", "ip", ip, "resetAt", decision.ResetAt)
		s.metrics.ObserveSubmission("unknown", "rate_limited")
		return &APIError{Code: http.StatusTooManyRequests, Body: ErrorResponse{
			Message:   msgTooMany,
			ResetTime: decision.ResetAt.UTC().Format(time.RFC3339),
		}}
	}

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return &APIError{Code: http.StatusBadRequest, Body: ErrorResponse{Message: msgInvalidBody}, Err: err}
	}

	kind, success := TypeContact, msgContactSent
	if req.IsComment() {
		kind, success = TypeComment, msgCommentSent
	}
	ok := func() error {
		return c.JSON(http.StatusOK, ContactResponse{Message: success, RemainingRequests: decision.Remaining})
	}

	if err := req.Validate(); err != nil {
		s.metrics.ObserveSubmission(kind, "invalid")
		return &APIError{Code: http.StatusBadRequest, Body: ErrorResponse{Message: msgInvalid, Errors: fieldErrors(err)}}
	}

	if strings.TrimSpace(req.Honeypot) != "" {
		s.contactLog.Info("honeypot triggered", "ip", ip, "type", kind)
		s.metrics.ObserveSubmission(kind, "honeypot")
		return ok()
	}

	sub := s.sanitizer.Submission(req, s.now())
	if IsSpam(sub) {
		s.contactLog.Warn("spam submission dropped", "ip", ip, "type", kind, "email", sub.Email)
		s.metrics.ObserveSubmission(kind, "spam")
		return ok()
	}

	if sub.IsComment() {
		comment := Comment{
			ID:          uuid.NewString(),
			PostSlug:    sub.PostSlug,
			PostType:    sub.PostType,
			AuthorName:  sub.Name,
			AuthorEmail: sub.Email,
			Content:     sub.Message,
			Status:      "approved",
			CreatedAt:   sub.ReceivedAt,
		}
		if err := s.comments.Add(ctx, comment); err != nil {
			s.metrics.ObserveSubmission(kind, "error")
			return &APIError{Code: http.StatusInternalServerError, Body: ErrorResponse{Message: msgCommentFailed}, Err: err}
		}
		s.contactLog.Info("comment stored", "id", comment.ID, "postType", comment.PostType, "postSlug", comment.PostSlug)
	} else {
		s.contactLog.Info("contact received", "ip", ip, "email", sub.Email)
	}

	emailSent := s.notify(ctx, sub)
	s.metrics.ObserveSubmission(kind, "accepted")
	return c.JSON(http.StatusOK, ContactResponse{
		Message:           success,
		EmailSent:         emailSent,
		RemainingRequests: decision.Remaining,
	})
}

// notify sends the owner notification. Failures are logged and never fail
// the request.
func (s *Server) notify(ctx context.Context, sub Submission) bool {
	if s.notifier == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := s.notifier.Notify(ctx, sub); err != nil {
		s.contactLog.Error("notification failed", "type", sub.Type, "error", err)
		return false
	}
	return true
}

func (s *Server) handleListComments(c echo.Context) error {
	postType := strings.ToLower(strings.TrimSpace(c.QueryParam("postType")))
	postSlug := strings.TrimSpace(c.QueryParam("postSlug"))
	if postType == "" || postSlug == "" {
		return newAPIError(http.StatusBadRequest, "postType and postSlug are required")
	}
	if err := validation.Validate(postType, validation.In(postTypes...)); err != nil {
		return newAPIError(http.StatusBadRequest, "postType must be one of post, project, creative")
	}

	comments, err := s.comments.List(c.Request().Context(), postType, postSlug)
	if err != nil {
		return &APIError{Code: http.StatusInternalServerError, Body: ErrorResponse{Message: "Failed to fetch comments"}, Err: err}
	}
	return c.JSON(http.StatusOK, comments)
}
