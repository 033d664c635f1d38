package codec

import "errors"

// ErrMalformed marks every data-shape failure raised by the deserializers
// and decoders. The facade falls back to ARRAY/NUMERIC parsing only when it
// sees this error; anything else propagates untouched so programmer errors
// are never masked by the fallback.
var ErrMalformed = errors.New("malformed series text")

// ErrUnknownFormat is returned when a format token is outside the closed set.
var ErrUnknownFormat = errors.New("unknown format")

// ErrUnknownType is returned when a value-type token is outside the closed set.
var ErrUnknownType = errors.New("unknown value type")
