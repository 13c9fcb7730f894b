package event

import (
	"crypto/rand"
	"encoding/hex"
)

// NewTraceID generates a 128-bit random trace id (W3C Trace Context
// compatible, 32 hex chars).
func NewTraceID() string {
	var b [16]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// NewSpanID generates a 64-bit random span id (16 hex chars).
func NewSpanID() string {
	var b [8]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
