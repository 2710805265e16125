// Package ffi provides FFI bindings to the libx264 shim library.
// It supports both purego (default) and CGO backends via build tags.
package ffi

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"
)

var (
	// ErrLibraryNotLoaded is returned when the shim library hasn't been loaded.
	ErrLibraryNotLoaded = errors.New("libx264_shim library not loaded")

	// ErrLibraryNotFound is returned when the shim library cannot be found.
	ErrLibraryNotFound = errors.New("libx264_shim library not found")

	// FFI error sentinels - these match shim error codes and support errors.Is().
	ErrInvalidParam = errors.New("invalid parameter")
	ErrOpenFailed   = errors.New("engine rejected parameters")
	ErrEncodeFailed = errors.New("engine signaled encode error")
	ErrNotSupported = errors.New("not supported")
)

// Error codes from shim (int32 to match C int). x264 itself only signals
// a negative status; the shim adds parameter validation on top.
const (
	ShimOK              int32 = 0
	ShimErrInvalidParam int32 = -1
	ShimErrOpenFailed   int32 = -2
	ShimErrEncodeFailed int32 = -3
	ShimErrNotSupported int32 = -4
)

var (
	libHandle uintptr
	libLoaded atomic.Bool // Use atomic for lock-free reads
	libMu     sync.Mutex  // Still used for load/unload operations
)

// LoadLibrary loads the libx264_shim shared library.
// It searches in the following locations:
// 1. Path specified by X264_SHIM_PATH environment variable
// 2. ./lib/{os}_{arch}/ (module-relative)
// 3. System library paths
func LoadLibrary() error {
	libMu.Lock()
	defer libMu.Unlock()

	if libLoaded.Load() {
		return nil
	}

	libPath, found := findLocalLibrary()
	if !found {
		// Fall back to the bare library name and let the dynamic
		// linker search the system paths.
		libPath = getLibraryName()
	}

	handle, err := dlopenLibrary(libPath, RTLD_NOW|RTLD_GLOBAL)
	if err != nil {
		if !found {
			return fmt.Errorf("%w: %v", ErrLibraryNotFound, err)
		}
		return fmt.Errorf("failed to load %s: %w", libPath, err)
	}

	libHandle = handle
	if err := registerFunctions(); err != nil {
		_ = dlcloseLibrary(handle)
		return err
	}

	libLoaded.Store(true)
	return nil
}

// MustLoadLibrary loads the library and panics on failure.
func MustLoadLibrary() {
	if err := LoadLibrary(); err != nil {
		panic(fmt.Sprintf("libgox264: %v", err))
	}
}

// IsLoaded returns true if the shim library is loaded.
// Thread-safe due to atomic.Bool.
func IsLoaded() bool {
	return libLoaded.Load()
}

// Close unloads the shim library.
func Close() error {
	libMu.Lock()
	defer libMu.Unlock()

	if !libLoaded.Load() {
		return nil
	}

	if err := dlcloseLibrary(libHandle); err != nil {
		return err
	}

	libLoaded.Store(false)
	libHandle = 0
	return nil
}

// ExpectedShimVersion is the shim API version this Go code expects.
// Must match kShimVersion in shim/shim_common.c.
const ExpectedShimVersion = "0.1.0"

// MinX264Build is the oldest x264 build the shim API is validated against.
const MinX264Build = 155

// ErrVersionMismatch is returned when the shim version doesn't match.
var ErrVersionMismatch = errors.New("shim version mismatch")

// ShimVersion returns the shim library version.
// Returns empty string if library is not loaded.
func ShimVersion() string {
	if !libLoaded.Load() {
		return ""
	}
	ptr := shimVersion()
	if ptr == 0 {
		return ""
	}
	return GoString(unsafe.Pointer(ptr))
}

// X264Build returns the build number of the x264 library the shim links.
// Returns 0 if the library is not loaded.
func X264Build() int {
	if !libLoaded.Load() {
		return 0
	}
	return int(shimX264Build())
}

// CheckVersion verifies the shim version matches what this Go code expects.
// Returns nil if versions match, ErrVersionMismatch otherwise.
func CheckVersion() error {
	if !libLoaded.Load() {
		return ErrLibraryNotLoaded
	}

	shimVer := ShimVersion()
	if shimVer != ExpectedShimVersion {
		return fmt.Errorf("%w: shim version %q, expected %q", ErrVersionMismatch, shimVer, ExpectedShimVersion)
	}
	if build := X264Build(); build < MinX264Build {
		return fmt.Errorf("%w: x264 build %d, need at least %d", ErrVersionMismatch, build, MinX264Build)
	}
	return nil
}

func findLocalLibrary() (string, bool) {
	// Check environment variable first
	if path := os.Getenv("X264_SHIM_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}

	libName := getLibraryName()
	platformDir := fmt.Sprintf("%s_%s", runtime.GOOS, runtime.GOARCH)

	// Build search paths
	var searchPaths []string

	// Check relative to executable
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		searchPaths = append(searchPaths, filepath.Join(execDir, "lib", platformDir, libName))
	}

	// Check working directory
	if wd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths,
			filepath.Join(wd, "lib", platformDir, libName),
			filepath.Join(wd, "..", "lib", platformDir, libName),
		)
	}

	// Check relative to this source file (for development/testing)
	// This finds lib/ relative to the Go module root
	_, thisFile, _, ok := runtime.Caller(0)
	if ok {
		// thisFile is .../internal/ffi/lib.go, go up to module root
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
		searchPaths = append(searchPaths, filepath.Join(moduleRoot, "lib", platformDir, libName))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, _ := filepath.Abs(path)
			return absPath, true
		}
	}

	return "", false
}

func getLibraryName() string {
	switch runtime.GOOS {
	case "darwin":
		return "libx264_shim.dylib"
	case "windows":
		return "libx264_shim.dll"
	default:
		return "libx264_shim.so"
	}
}

// ShimError converts a shim error code to a Go error.
// Returns sentinel errors that support errors.Is() comparisons.
func ShimError(code int32) error {
	switch code {
	case ShimOK:
		return nil
	case ShimErrInvalidParam:
		return ErrInvalidParam
	case ShimErrOpenFailed:
		return ErrOpenFailed
	case ShimErrEncodeFailed:
		return ErrEncodeFailed
	case ShimErrNotSupported:
		return ErrNotSupported
	default:
		if code < 0 {
			// x264 reports failure as a bare negative status with no
			// finer classification.
			return ErrEncodeFailed
		}
		return nil
	}
}
