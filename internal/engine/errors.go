package engine

import (
	"errors"
	"fmt"
)

// ValidationError rejects a request before any model call is made.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// TransportError wraps a failed model call. The game state is untouched when
// it is returned, so the player can simply try again.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "model call failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

var apologies = map[string]string{
	"en": "Oops, the storyteller needs a little break. Please try again!",
	"ar": "عذرًا، الحكواتي يحتاج إلى استراحة قصيرة. حاول مرة أخرى من فضلك!",
}

// UserMessage turns err into text that is safe to show a child. Validation
// errors name the offending field; everything else becomes a short apology
// in the requested locale, English by default.
func UserMessage(err error, locale string) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	if msg, ok := apologies[locale]; ok {
		return msg
	}
	return apologies["en"]
}
