package telephony

import (
	"context"
	"net/http"

	"ivr-gateway/internal/flow"
	"ivr-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AudioResolver fetches the audio bytes for a code, fallback rule included.
type AudioResolver interface {
	ResponseAudio(ctx context.Context, code string) ([]byte, error)
}

// WebhookHandlers serves the telephony platform's voice callbacks. Parsing
// and rendering live here; every decision belongs to the flow engine.
//
// Failure contract: these endpoints always answer 200 with some TwiML. An
// error status would leave the caller with dead air.
type WebhookHandlers struct {
	Engine *flow.Engine
	Audio  AudioResolver
}

const twimlContentType = "text/xml; charset=utf-8"

// Answer handles the entry webhook of a new inbound call.
func (h *WebhookHandlers) Answer(c *gin.Context) {
	form := ParseAnswerForm(c.Request)
	ctx := logger.With(c.Request.Context(), logger.FromGin(c))
	s := h.Engine.Answer(ctx, flow.AnswerRequest{
		Caller:  form.Caller,
		CallSID: form.CallSID,
	})
	h.writeScript(c, s)
}

// CollectDigits handles the digit-collection callback.
func (h *WebhookHandlers) CollectDigits(c *gin.Context) {
	form := ParseDigitsForm(c.Request)
	ctx := logger.With(c.Request.Context(), logger.FromGin(c))
	s := h.Engine.CollectDigits(ctx, flow.DigitsRequest{
		Digits:  form.Digits,
		CallSID: form.CallSID,
	})
	h.writeScript(c, s)
}

// CollectID handles the id-collection callback.
func (h *WebhookHandlers) CollectID(c *gin.Context) {
	form := ParseIDForm(c.Request)
	ctx := logger.With(c.Request.Context(), logger.FromGin(c))
	s := h.Engine.CollectID(ctx, flow.IDRequest{
		IDNumber: form.IDNumber,
		CallSID:  form.CallSID,
		Cont:     form.Cont,
	})
	h.writeScript(c, s)
}

// AudioFile streams the stored audio for a code, or an empty body when the
// resolved code has none.
func (h *WebhookHandlers) AudioFile(c *gin.Context) {
	code := c.Request.FormValue("code")
	audio, err := h.Audio.ResponseAudio(c.Request.Context(), code)
	if err != nil {
		logger.FromGin(c).Error("audio lookup failed", "code", code, "err", err)
		audio = nil
	}
	if len(audio) == 0 {
		c.Data(http.StatusOK, "text/plain; charset=utf-8", nil)
		return
	}
	c.Data(http.StatusOK, "audio/mpeg", audio)
}

func (h *WebhookHandlers) writeScript(c *gin.Context, s flow.Script) {
	out, err := RenderTwiML(s)
	if err != nil {
		logger.FromGin(c).Error("twiml render failed", "err", err)
		out = EmptyTwiML
	}
	c.Data(http.StatusOK, twimlContentType, []byte(out))
}
