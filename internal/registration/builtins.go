// Package registration wires the built-in generator providers into the
// factory registry. Registration is explicit so tests and binaries opt in
// instead of relying on init side effects.
package registration

import (
	"github.com/postforge/postforge/internal/generator/gemini"
	"github.com/postforge/postforge/internal/generator/groq"
)

// RegisterBuiltins registers all built-in generator providers.
// Safe to call more than once.
func RegisterBuiltins() {
	gemini.Register()
	groq.Register()
}
