package pathutil

import "errors"

var (
	// ErrUNCPath is returned when a UNC path (//server/share) is supplied.
	// path.Clean would collapse // to /, causing collisions with local paths.
	ErrUNCPath = errors.New("pathutil: UNC paths are not supported, use a local mount point")

	// ErrNotAbsolute is returned by FromAbsolute when given a relative path.
	ErrNotAbsolute = errors.New("pathutil: path is not absolute")

	// ErrAbsoluteJoinElement is returned by Join when an element looks absolute.
	ErrAbsoluteJoinElement = errors.New("pathutil: Join element looks absolute")
)
