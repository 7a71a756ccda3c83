// Package platform talks to the host desktop: reading and writing the
// custom icon attached to a file or folder, and driving an external
// trimming tool when one is configured. Icon access only exists on
// macOS; other systems get ErrUnsupported.
package platform

import "errors"

// ErrUnsupported is returned on systems without desktop icon access.
var ErrUnsupported = errors.New("platform: icon access not supported on this system")
