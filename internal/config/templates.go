package config

import (
	"fmt"
	"os"
)

// Template returns a commented config file holding the default values.
func Template() string { return template }

// WriteTemplate writes the template to path, refusing to replace an existing
// file unless overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const template = `# focusd configuration
device_name = "focus"
port = "/dev/ttyACM0"
baud = 9600
read_timeout = "50ms"
tick = "1ms"

# transmit pacing per character
char_delay = "100us"

# XOFF at pause_watermark buffered bytes, XON at resume_watermark
pause_watermark = 32
resume_watermark = 4
line_capacity = 32
rx_buffer = 64

# empty disables the /metrics listener
metrics_addr = ""

led_count = 64
led_modes = 4

keymap_layers = 2
keymap_keys = 64
keymap_defaults = []
`
