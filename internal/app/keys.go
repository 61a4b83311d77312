package app

import "github.com/nhle/mailmind/internal/keys"

// KeyMap is re-exported from the keys package for callers embedding the
// root model.
type KeyMap = keys.KeyMap

// DefaultKeyMap delegates to keys.DefaultKeyMap.
func DefaultKeyMap() *KeyMap {
	return keys.DefaultKeyMap()
}
