package protocol

const (
	// Separator splits tokens inside a request or response line.
	Separator byte = ' '
	// Newline terminates a request line.
	Newline byte = '\n'
	// CarriageReturn precedes Newline in response lines and is tolerated in requests.
	CarriageReturn byte = '\r'
	// Comment prefixes documentation lines that hosts should not parse as data.
	Comment byte = '#'

	// XOFF asks the remote sender to pause.
	XOFF byte = 0x13
	// XON asks the remote sender to resume.
	XON byte = 0x11
)

const (
	// HelpCommand is the reserved help-request keyword.
	HelpCommand = "help"
	// LineEnd is written after response lines.
	LineEnd = "\r\n"
	// EndOfResponse marks the end of one command's output.
	EndOfResponse = "\r\n.\r\n"
)

// DefaultLineCapacity bounds a single inbound token, matching the device's fixed input buffer.
const DefaultLineCapacity = 32

// IsLineEnd reports whether b terminates the current request line.
func IsLineEnd(b byte) bool {
	return b == Newline || b == CarriageReturn
}

// IsDocLine reports whether line is a documentation line rather than data.
func IsDocLine(line string) bool {
	return len(line) > 0 && line[0] == Comment
}
