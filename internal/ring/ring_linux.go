//go:build linux

package ring

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// newMapping implements the POSIX half of the dual virtual-memory mapping
// design note: an anonymous memfd sized to a page-size multiple, reserved
// once as 2R bytes of address space, then mapped twice MAP_FIXED over that
// reservation so [base, base+2R) aliases the same R physical bytes twice.
func newMapping(minBytes int) (data []byte, spanBytes int, mirrored bool, closeFn func() error, err error) {
	pageSize := unix.Getpagesize()
	spanBytes = roundUp(minBytes, pageSize)

	fd, err := unix.MemfdCreate("gsmiq-ring", 0)
	if err != nil {
		return nil, 0, false, nil, fmt.Errorf("memfd_create: %w", err)
	}
	cleanupFd := true
	defer func() {
		if cleanupFd {
			unix.Close(fd)
		}
	}()

	if err := unix.Ftruncate(fd, int64(spanBytes)); err != nil {
		return nil, 0, false, nil, fmt.Errorf("ftruncate: %w", err)
	}

	// Reserve 2*spanBytes of address space with no access rights, to get a
	// base address the kernel guarantees is free for the two MAP_FIXED
	// mappings below.
	reservation, err := unix.Mmap(-1, 0, 2*spanBytes, unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, 0, false, nil, fmt.Errorf("reserve mapping: %w", err)
	}
	base := uintptr(unsafe.Pointer(&reservation[0]))

	if _, errno := mmapFixed(base, spanBytes, fd, 0); errno != 0 {
		unix.Munmap(reservation)
		return nil, 0, false, nil, fmt.Errorf("mmap first copy: %w", errno)
	}
	if _, errno := mmapFixed(base+uintptr(spanBytes), spanBytes, fd, 0); errno != 0 {
		unix.Munmap(reservation)
		return nil, 0, false, nil, fmt.Errorf("mmap second copy: %w", errno)
	}

	cleanupFd = false
	closeFn = func() error {
		munmapErr := unix.Munmap(reservation)
		closeErr := unix.Close(fd)
		if munmapErr != nil {
			return munmapErr
		}
		return closeErr
	}
	return reservation, spanBytes, true, closeFn, nil
}

// mmapFixed issues mmap(2) with MAP_FIXED at an exact address. golang.org/x/sys/unix.Mmap
// always lets the kernel choose the address, so the fixed-address double
// mapping has to go through the raw syscall directly.
func mmapFixed(addr uintptr, length, fd int, offset int64) (uintptr, unix.Errno) {
	ret, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		addr,
		uintptr(length),
		uintptr(unix.PROT_READ|unix.PROT_WRITE),
		uintptr(unix.MAP_SHARED|unix.MAP_FIXED),
		uintptr(fd),
		uintptr(offset),
	)
	return ret, errno
}
