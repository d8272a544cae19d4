//go:build windows

package ring

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// unsafeSliceFromAddr builds a []byte view over memory already mapped at
// addr by MapViewOfFileEx; the Go runtime does not own this memory, so the
// slice must never be appended to (only indexed/copied within [0, n)).
func unsafeSliceFromAddr(addr uintptr, n int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
}

// windowsAllocGranularity is the Windows file-mapping granularity (64 KiB
// on all supported architectures); requested capacity is rounded up to this
// before allocation.
const windowsAllocGranularity = 64 * 1024

// newMapping implements the Windows half of the dual mapping: a paging-file
// backed file mapping, reserved once as 2R bytes via VirtualAlloc so a free
// address range is known, then mapped twice with MapViewOfFileEx over that
// range.
func newMapping(minBytes int) (data []byte, spanBytes int, mirrored bool, closeFn func() error, err error) {
	spanBytes = roundUp(minBytes, windowsAllocGranularity)

	handle, err := windows.CreateFileMapping(
		windows.InvalidHandle,
		nil,
		windows.PAGE_READWRITE,
		0,
		uint32(spanBytes),
		nil,
	)
	if err != nil {
		return nil, 0, false, nil, fmt.Errorf("CreateFileMapping: %w", err)
	}
	cleanupHandle := true
	defer func() {
		if cleanupHandle {
			windows.CloseHandle(handle)
		}
	}()

	reservedAddr, err := windows.VirtualAlloc(0, uintptr(2*spanBytes), windows.MEM_RESERVE, windows.PAGE_NOACCESS)
	if err != nil {
		return nil, 0, false, nil, fmt.Errorf("VirtualAlloc reserve: %w", err)
	}
	// Release the reservation so the address range is free again, then
	// immediately map both views into it. This is the standard
	// reserve-then-release-then-map trick for getting a predictable base
	// address for a double mapping on Windows; it is racy against other
	// threads allocating memory between the two calls, which in practice
	// is acceptable for a process-local ring buffer set up once at startup.
	if err := windows.VirtualFree(reservedAddr, 0, windows.MEM_RELEASE); err != nil {
		return nil, 0, false, nil, fmt.Errorf("VirtualFree reservation: %w", err)
	}

	first, err := windows.MapViewOfFileEx(handle, windows.FILE_MAP_WRITE, 0, 0, uintptr(spanBytes), reservedAddr)
	if err != nil {
		return nil, 0, false, nil, fmt.Errorf("MapViewOfFileEx first copy: %w", err)
	}
	second, err := windows.MapViewOfFileEx(handle, windows.FILE_MAP_WRITE, 0, 0, uintptr(spanBytes), reservedAddr+uintptr(spanBytes))
	if err != nil {
		windows.UnmapViewOfFile(first)
		return nil, 0, false, nil, fmt.Errorf("MapViewOfFileEx second copy: %w", err)
	}

	cleanupHandle = false
	closeFn = func() error {
		err1 := windows.UnmapViewOfFile(second)
		err2 := windows.UnmapViewOfFile(first)
		err3 := windows.CloseHandle(handle)
		for _, e := range []error{err1, err2, err3} {
			if e != nil {
				return e
			}
		}
		return nil
	}

	return unsafeSliceFromAddr(reservedAddr, 2*spanBytes), spanBytes, true, closeFn, nil
}
