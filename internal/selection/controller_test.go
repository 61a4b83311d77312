package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestController_SelectAndClear(t *testing.T) {
	var c Controller

	_, ok := c.Current()
	assert.False(t, ok)

	c.Select("E1")
	id, ok := c.Current()
	assert.True(t, ok)
	assert.Equal(t, "E1", id)

	c.Clear()
	assert.Equal(t, "", c.ID())
}

func TestController_ListenersOnChangeOnly(t *testing.T) {
	var c Controller
	type change struct{ prev, next string }
	var got []change
	c.OnChange(func(prev, next string) {
		got = append(got, change{prev, next})
	})

	c.Select("E1")
	c.Select("E1")
	c.Select("E2")
	c.Clear()
	c.Clear()

	assert.Equal(t, []change{{"", "E1"}, {"E1", "E2"}, {"E2", ""}}, got)
}

func TestController_ClearingRunsOverlayHook(t *testing.T) {
	var c Controller
	overlay := true
	c.OnChange(func(_, next string) {
		if next == "" {
			overlay = false
		}
	})

	c.Select("E1")
	assert.True(t, overlay)
	c.Clear()
	assert.False(t, overlay)
}
