// Package plugins assembles the built-in focus plugins in dispatch order.
package plugins

import "github.com/danmuck/focusctl/internal/focus/dispatch"

// Plugin is a dispatch plugin whose state device.reset can restore.
type Plugin interface {
	dispatch.Plugin
	Reset()
}
