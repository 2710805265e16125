//go:build (!linux || !cgo) && !windows

package ffi

import "github.com/ebitengine/purego"

// Default backend: purego's dlopen, no cgo required. The cgo variant in
// dl_helpers_linux_cgo.go takes over when cgo is enabled on Linux.

const (
	RTLD_NOW    = purego.RTLD_NOW
	RTLD_GLOBAL = purego.RTLD_GLOBAL
)

func dlopenLibrary(path string, flags int) (uintptr, error) {
	return purego.Dlopen(path, flags)
}

func dlsymLibrary(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

func dlcloseLibrary(handle uintptr) error {
	return purego.Dlclose(handle)
}
