// Command framebridge builds the frame bridge as a C library for camera
// hosts:
//
//	go build -buildmode=c-shared -o libframebridge.so ./cmd/framebridge
//
// Add -tags gocv to analyze with OpenCV instead of the pure Go backend.
// Strings returned to C are owned by the caller and must be released with
// FrameBridgeFreeString. Frame buffers are borrowed for the duration of a
// call only.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"
)

// borrow views the caller's buffer without copying. The slice must not
// outlive the call.
func borrow(data *C.uint8_t, length C.int) []byte {
	if data == nil || length <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(data)), int(length))
}

//export FrameBridgeVersion
func FrameBridgeVersion() *C.char {
	return C.CString(version())
}

//export FrameBridgeAnalyzeFrame
func FrameBridgeAnalyzeFrame(data *C.uint8_t, length, width, height C.int) *C.char {
	s, err := analyze(borrow(data, length), int(width), int(height))
	if err != nil {
		return nil
	}
	return C.CString(s)
}

//export FrameBridgeBrightness
func FrameBridgeBrightness(data *C.uint8_t, length, width, height C.int) C.double {
	return C.double(brightness(borrow(data, length), int(width), int(height)))
}

// FrameBridgeLastError returns the message of the most recent failed call,
// or NULL when the most recent call succeeded. The message is process-wide,
// not per thread: when several threads call into the library, one may read
// the error left by another. Hosts that analyze from more than one thread
// must serialize each call with its FrameBridgeLastError read.
//
//export FrameBridgeLastError
func FrameBridgeLastError() *C.char {
	msg := lastError()
	if msg == "" {
		return nil
	}
	return C.CString(msg)
}

//export FrameBridgeFreeString
func FrameBridgeFreeString(s *C.char) {
	C.free(unsafe.Pointer(s))
}

func main() {}
