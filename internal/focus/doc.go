// Package focus implements the device side of the focus serial protocol.
//
// An Engine wraps one transport.Port. It runs software flow control before
// reads and once per control-loop tick, decodes typed parameters lazily from
// the current request line, and encodes typed responses one paced character
// at a time. Decode failures are silent on the wire: every typed read returns
// a zero value and false when nothing parsable was present.
//
// An Engine is not safe for concurrent use; drive it from the control loop only.
package focus
