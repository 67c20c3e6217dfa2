package comicfs

import (
	"errors"

	"github.com/meigma/comicfs/manifest"
)

// Errors returned by archive operations. Backends wrap these with
// context; discriminate with errors.Is.
var (
	// ErrCorruptArchive is returned when a container's structure cannot
	// be read (for example a broken zip central directory).
	ErrCorruptArchive = errors.New("comicfs: corrupt archive")

	// ErrUnsupportedFormat is returned when a locator does not match any
	// known container kind.
	ErrUnsupportedFormat = errors.New("comicfs: unsupported format")

	// ErrExternalToolMissing is returned when no external extraction
	// tool can be resolved for RAR containers. Resolution is attempted
	// once per session, not once per page.
	ErrExternalToolMissing = errors.New("comicfs: external tool missing")

	// ErrExternalToolFailure is returned when the external extraction
	// tool exits nonzero or produces unparsable output.
	ErrExternalToolFailure = errors.New("comicfs: external tool failure")

	// ErrNetworkFailure is returned when fetching a remote page fails
	// after bounded retries.
	ErrNetworkFailure = errors.New("comicfs: network failure")

	// ErrManifestMissing is returned when a web archive carries no
	// manifest.
	ErrManifestMissing = errors.New("comicfs: manifest missing")

	// ErrIndexOutOfRange is returned for page indices outside
	// [0, PageCount).
	ErrIndexOutOfRange = errors.New("comicfs: page index out of range")

	// ErrEmptyArchive is returned when an operation needs at least one
	// page and the archive has none.
	ErrEmptyArchive = errors.New("comicfs: empty archive")

	// ErrNotReady is returned when an operation is invoked on a handle
	// that is not in the Ready state.
	ErrNotReady = errors.New("comicfs: archive not ready")
)

// ErrManifestParse is re-exported from the manifest package.
var ErrManifestParse = manifest.ErrParse
