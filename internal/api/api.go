// Package api defines the JSON wire format of the HTTP API. Every type
// encodes itself with go-faster/jx; request types also decode.
package api

import (
	"github.com/go-faster/jx"
)

// Encoder is implemented by every response type.
type Encoder interface {
	Encode(e *jx.Encoder)
}

// Error is the body of every non-2xx response.
type Error struct {
	Code    int
	Message string
}

// Encode implements Encoder.
func (r *Error) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(r.Code) })
		e.Field("message", func(e *jx.Encoder) { e.Str(r.Message) })
	})
}

// Marshal encodes v into a fresh byte slice.
func Marshal(v Encoder) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	v.Encode(e)
	return append([]byte(nil), e.Bytes()...)
}

// optStr decodes a string that may be null.
func optStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}
