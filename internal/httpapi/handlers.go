package httpapi

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"ivr-gateway/internal/audit"
	"ivr-gateway/internal/auth"
	"ivr-gateway/internal/hours"
	"ivr-gateway/internal/ignored"
	"ivr-gateway/internal/messages"
	"ivr-gateway/internal/registry"
	"ivr-gateway/internal/reporting"
	"ivr-gateway/internal/settings"
	"ivr-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups the admin console endpoints for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth     *auth.Manager
	Messages *messages.Service
	Hours    hours.Repository
	Ignored  ignored.Repository
	Registry registry.Repository
	Settings settings.Store
	Reports  *reporting.Service
	Audit    *audit.Service
}

const maxAudioUploadBytes = 10 << 20

// --- Auth ---

type loginRequest struct {
	Role     string `json:"role"`
	Password string `json:"password"`
}

// Login exchanges operator credentials for a JWT token pair.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Role == "" {
		req.Role = "admin"
	}
	pair, err := h.Auth.Login(time.Now(), req.Role, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad credentials"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a refresh token for a fresh token pair.
func (h Handlers) Refresh(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	pair, err := h.Auth.Refresh(time.Now(), req.RefreshToken)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Coded messages ---

func (h Handlers) ListMessages(c *gin.Context) {
	out, err := h.Messages.List(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

type setTextRequest struct {
	// Code may be empty: that is the default message every unmatched code
	// falls back to.
	Code       string `json:"code"`
	Text       string `json:"text"`
	RequireID  bool   `json:"require_id"`
	RegisterID bool   `json:"register_id"`
}

func (h Handlers) SetMessageText(c *gin.Context) {
	var req setTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	opts := messages.Options{RequireID: req.RequireID, RegisterID: req.RegisterID}
	if err := h.Messages.SetText(c.Request.Context(), req.Code, req.Text, opts); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "write failed"})
		return
	}
	h.logMutation(c, audit.EventTypeMessageSet, req.Code, "set text message")
	c.JSON(http.StatusOK, gin.H{"code": req.Code})
}

// SetMessageAudio accepts a multipart upload: form fields code, require_id,
// register_id and an mp3 file under "audio".
func (h Handlers) SetMessageAudio(c *gin.Context) {
	code := c.PostForm("code")
	opts := messages.Options{
		RequireID:  c.PostForm("require_id") == "1",
		RegisterID: c.PostForm("register_id") == "1",
	}

	fh, err := c.FormFile("audio")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "audio file required"})
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".mp3") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "only .mp3 uploads are accepted"})
		return
	}
	if fh.Size > maxAudioUploadBytes {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "audio too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxAudioUploadBytes+1))
	if err != nil || len(data) == 0 || len(data) > maxAudioUploadBytes {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}

	if err := h.Messages.SetAudio(c.Request.Context(), code, data, fh.Filename, opts); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "write failed"})
		return
	}
	h.logMutation(c, audit.EventTypeMessageSet, code, "set audio message "+fh.Filename)
	c.JSON(http.StatusOK, gin.H{"code": code, "file_name": fh.Filename})
}

// DeleteMessage removes a coded message. The default message lives at the
// empty code and is not routable here, which matches the rule that it can be
// replaced but never deleted.
func (h Handlers) DeleteMessage(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "code required"})
		return
	}
	if err := h.Messages.Delete(c.Request.Context(), code); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	h.logMutation(c, audit.EventTypeMessageDelete, code, "deleted message")
	c.JSON(http.StatusOK, gin.H{"code": code})
}

// --- Open hours ---

type weekRequest struct {
	// Days is Monday-first; null entries mean "open all day".
	Days [7]*hours.Window `json:"days"`
}

func (h Handlers) GetHours(c *gin.Context) {
	s, err := h.Hours.Load(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}
	c.JSON(http.StatusOK, weekRequest{Days: s})
}

// ReplaceHours swaps the whole weekly schedule in one write.
func (h Handlers) ReplaceHours(c *gin.Context) {
	var req weekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	s := hours.Schedule(req.Days)
	if err := hours.ValidateSchedule(s); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Hours.Replace(c.Request.Context(), s); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "write failed"})
		return
	}
	h.logMutation(c, audit.EventTypeHoursReplace, "", "replaced weekly schedule")
	c.JSON(http.StatusOK, req)
}

// --- Ignored numbers ---

type ignoredRequest struct {
	Number string `json:"number"`
}

func (h Handlers) ListIgnored(c *gin.Context) {
	out, err := h.Ignored.List(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"numbers": out})
}

// ToggleIgnored flips a number's membership in the ignored set.
func (h Handlers) ToggleIgnored(c *gin.Context) {
	var req ignoredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !strings.HasPrefix(req.Number, "+") || len(req.Number) < 2 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "number must be E.164, starting with +"})
		return
	}

	ctx := c.Request.Context()
	present, err := h.Ignored.Contains(ctx, req.Number)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if present {
		err = h.Ignored.Remove(ctx, req.Number)
	} else {
		err = h.Ignored.Add(ctx, req.Number)
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "write failed"})
		return
	}
	typ := audit.EventTypeIgnoredAdd
	if present {
		typ = audit.EventTypeIgnoredRemove
	}
	h.logMutation(c, typ, req.Number, "toggled ignored number")
	c.JSON(http.StatusOK, gin.H{"number": req.Number, "ignored": !present})
}

// --- Settings ---

type settingsRequest struct {
	IDPattern      *string `json:"id_pattern"`
	NotifyURL      *string `json:"notify_url"`
	NotifyExchange *string `json:"notify_exchange"`
	NotifyPassword *string `json:"notify_password"`
}

// UpdateSettings writes only the keys present in the request body.
func (h Handlers) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if req.IDPattern != nil && *req.IDPattern != "" {
		if _, err := regexp.Compile(*req.IDPattern); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "id_pattern does not compile"})
			return
		}
	}

	ctx := c.Request.Context()
	updates := map[string]*string{
		settings.KeyIDPattern:      req.IDPattern,
		settings.KeyNotifyURL:      req.NotifyURL,
		settings.KeyNotifyExchange: req.NotifyExchange,
		settings.KeyNotifyPassword: req.NotifyPassword,
	}
	var written []string
	for key, val := range updates {
		if val == nil {
			continue
		}
		if err := h.Settings.Set(ctx, key, *val); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "write failed"})
			return
		}
		written = append(written, key)
	}
	for _, key := range written {
		h.logMutation(c, audit.EventTypeSettingsSet, key, "updated setting")
	}
	c.JSON(http.StatusOK, gin.H{"updated": len(written)})
}

// --- Analytics ---

func (h Handlers) GetAnalytics(c *gin.Context) {
	out, err := h.Reports.Summary(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) GetRegistryCount(c *gin.Context) {
	n, err := h.Registry.Count(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// logMutation appends an audit event, best-effort.
func (h Handlers) logMutation(c *gin.Context, typ audit.EventType, target, message string) {
	if h.Audit == nil {
		return
	}
	role, _ := auth.Role(c.Request.Context())
	if err := h.Audit.Log(c.Request.Context(), typ, role, c.ClientIP(), target, message); err != nil {
		logger.FromGin(c).Error("audit append failed", "type", string(typ), "err", err)
	}
}
