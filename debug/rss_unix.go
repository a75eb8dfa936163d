//go:build unix

package debug

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// residentBytes reports the peak resident set size. Linux reports ru_maxrss
// in KiB, darwin and the BSDs in bytes.
func residentBytes() (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	v := uint64(ru.Maxrss)
	if runtime.GOOS == "linux" {
		v *= 1024
	}
	return v, nil
}
