package fsys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"syscall"
)

const describeFallback = "Format message failed with 0x%x"

// DescribeError renders the OS-level cause of err as human-readable text.
// It never fails: an error code the OS has no text for is rendered as
// "Format message failed with 0x<code>".
func DescribeError(err error) string {
	if err == nil {
		return ""
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return describeErrno(errno)
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Err != nil {
		return pathErr.Err.Error()
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && linkErr.Err != nil {
		return linkErr.Err.Error()
	}
	return err.Error()
}

func describeErrno(errno syscall.Errno) string {
	msg := errno.Error()
	// The runtime falls back to these forms when it has no message for the code.
	if msg == "" || strings.HasPrefix(msg, "errno ") || strings.HasPrefix(msg, "winapi error #") {
		return fmt.Sprintf(describeFallback, uint64(errno))
	}
	return msg
}
