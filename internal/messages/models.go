package messages

// Reserved codes with engine-level meaning. Everything else is free for
// operators to assign.
const (
	CodeDefault   = ""
	CodePrompt    = "prompt"
	CodeClosed    = "closed"
	CodeIDPrompt  = "id-prompt"
	CodeGoodID    = "good-id"
	CodeBadID     = "bad-id"
	CodeUnknownID = "unknown-id"
)

// Options are the per-code behavior flags. They are persisted as a small
// bit-set; only the two defined bits survive a round-trip.
type Options struct {
	RequireID  bool `json:"require_id"`
	RegisterID bool `json:"register_id"`
}

const (
	bitRequireID  = 1 << 0
	bitRegisterID = 1 << 1

	optionsMask = bitRequireID | bitRegisterID
)

// Bits encodes the options into their storage representation.
func (o Options) Bits() uint8 {
	var b uint8
	if o.RequireID {
		b |= bitRequireID
	}
	if o.RegisterID {
		b |= bitRegisterID
	}
	return b
}

// OptionsFromBits decodes a stored bit-set. Undefined bits are ignored.
func OptionsFromBits(b uint8) Options {
	b &= optionsMask
	return Options{
		RequireID:  b&bitRequireID != 0,
		RegisterID: b&bitRegisterID != 0,
	}
}

// Entry is the admin-facing view of one stored coded message.
// Audio bytes are intentionally not included; they are fetched separately.
type Entry struct {
	Code     string  `json:"code"`
	IsText   bool    `json:"is_text"`
	Text     string  `json:"text,omitempty"`
	FileName string  `json:"file_name,omitempty"`
	Options  Options `json:"options"`
}
