package protocol

import "errors"

var (
	ErrNoToken       = errors.New("protocol: no token before end of line")
	ErrTokenTooLong  = errors.New("protocol: token exceeds line capacity")
	ErrInvalidLength = errors.New("protocol: invalid capacity")
)
