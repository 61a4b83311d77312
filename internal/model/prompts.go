package model

// ActivePromptsID is the document key the backend stores the active
// system prompts under.
const ActivePromptsID = "active_prompts"

// Prompts maps a prompt name to its system prompt text.
type Prompts map[string]string

// Clone returns an independent copy of p.
func (p Prompts) Clone() Prompts {
	out := make(Prompts, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
