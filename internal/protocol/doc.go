// Package protocol owns the focus wire contract and its text codec.
//
// Ownership boundary:
// - separator, terminator, comment and flow-control byte constants
// - Value tagged variant for every type carried on the wire
// - token/number decoding over a peekable byte source
// - token text encoding (send and raw forms)
package protocol
