package repository

import (
	"github.com/google/uuid"
)

// NewID returns a prefixed random identifier, e.g. "cmt-0f8c..."
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// ID prefixes per record kind
const (
	PrefixComment      = "cmt"
	PrefixReaction     = "rct"
	PrefixHighlight    = "hl"
	PrefixFeedback     = "fb"
	PrefixNotification = "ntf"
	PrefixEngagement   = "eng"
)
