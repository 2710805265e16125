package ffi

import (
	"unsafe"
)

// ByteSlicePtr returns a uintptr to the first element of a byte slice.
// Returns 0 if the slice is empty.
func ByteSlicePtr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

// Int32Ptr returns a uintptr to an int32 variable.
func Int32Ptr(p *int32) uintptr {
	return uintptr(unsafe.Pointer(p))
}

// UintptrPtr returns a uintptr to a uintptr variable.
func UintptrPtr(p *uintptr) uintptr {
	return uintptr(unsafe.Pointer(p))
}

// BytesView aliases engine-owned memory as a Go byte slice without
// copying. The view is valid only until the next call that mutates the
// owning encoder handle; callers needing retention must copy first.
// x264 owns and recycles its NAL buffers, so nothing is freed here.
func BytesView(ptr uintptr, size int) []byte {
	if ptr == 0 || size <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size)
}

// GoString copies a NUL-terminated C string into a Go string.
func GoString(ptr unsafe.Pointer) string {
	if ptr == nil {
		return ""
	}
	var n int
	for {
		if *(*byte)(unsafe.Pointer(uintptr(ptr) + uintptr(n))) == 0 {
			break
		}
		n++
	}
	return string(unsafe.Slice((*byte)(ptr), n))
}

// CString allocates a null-terminated C string from a Go string.
// The caller is responsible for keeping the returned byte slice alive
// for as long as the C code needs it.
func CString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	b[len(s)] = 0
	return b
}
