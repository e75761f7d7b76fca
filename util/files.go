package util

import (
	"os"

	"golang.org/x/sys/unix"
)

// ReadFileAt reads full contents of a file in given directory
func ReadFileAt(dir *os.File, filename string) ([]byte, error) {
	fd, oerr := unix.Openat(int(dir.Fd()), filename, unix.O_RDONLY, 0o644)
	if oerr != nil {
		return nil, oerr
	}
	defer unix.Close(fd)

	var stat unix.Stat_t
	if serr := unix.Fstat(fd, &stat); serr != nil {
		return nil, serr
	}
	buf := make([]byte, stat.Size)
	total := 0
	for total < len(buf) {
		n, rerr := unix.Read(fd, buf[total:])
		if rerr != nil {
			return nil, rerr
		}
		if n == 0 {
			break
		}
		total += n
	}
	return buf[:total], nil
}

// WriteFileAt replaces the file in given directory with new contents
//
// The contents are written to a temporary file first and renamed over the target, so readers never see partial data
func WriteFileAt(dir *os.File, filename string, data []byte, perm os.FileMode) error {
	tmpName := "." + filename + ".tmp"
	fd, oerr := unix.Openat(int(dir.Fd()), tmpName, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, uint32(perm))
	if oerr != nil {
		return oerr
	}
	for written := 0; written < len(data); {
		n, werr := unix.Write(fd, data[written:])
		if werr != nil {
			unix.Close(fd)
			_ = unix.Unlinkat(int(dir.Fd()), tmpName, 0)
			return werr
		}
		written += n
	}
	if serr := unix.Fsync(fd); serr != nil {
		unix.Close(fd)
		return serr
	}
	unix.Close(fd)
	return unix.Renameat(int(dir.Fd()), tmpName, int(dir.Fd()), filename)
}

// UnlinkFileAt unlinks an existing file in given directory
func UnlinkFileAt(dir *os.File, filename string) error {
	return unix.Unlinkat(int(dir.Fd()), filename, 0)
}

// IsNotExist checks if the error from the *At functions means the file doesn't exist
func IsNotExist(err error) bool {
	return err == unix.ENOENT || os.IsNotExist(err)
}
