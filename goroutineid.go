package uthreads

import (
	"bytes"
	"runtime"
	"strconv"
)

// currentGoroutineID extracts the calling goroutine's runtime id by
// parsing the header line of its own stack trace ("goroutine 123 [running]:
// ..."). This is the standard portable trick for goroutine-local identity
// used by several Go libraries when no handle to "the current goroutine" is
// otherwise available; it relies only on runtime.Stack, not on
// go:linkname, so it survives across Go versions the way a raw runtime
// hook would not.
//
// Checkpoint uses this to work out which thread's own goroutine is calling
// it, since entry functions are plain func() per the data model and carry
// no explicit thread handle.
func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return 0
	}
	b = b[len(prefix):]
	i := bytes.IndexByte(b, ' ')
	if i < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(b[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
