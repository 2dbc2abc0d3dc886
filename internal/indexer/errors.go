package indexer

import (
	"errors"
	"fmt"
)

// ErrInvalidTable marks a metadata table that cannot be indexed.
var ErrInvalidTable = errors.New("invalid metadata table")

// NameError reports an image file name that does not follow the
// <prefix>_S<token>..._I<token><ext> convention.
type NameError struct {
	// Kind is one of "extension", "subject_marker", "image_marker", "token".
	Kind string
	Name string
}

func (e *NameError) Error() string {
	switch e.Kind {
	case NameErrExtension:
		return fmt.Sprintf("%s: unexpected extension", e.Name)
	case NameErrSubjectMarker:
		return fmt.Sprintf("%s: no _S subject marker", e.Name)
	case NameErrImageMarker:
		return fmt.Sprintf("%s: no _I image marker after the subject marker", e.Name)
	case NameErrToken:
		return fmt.Sprintf("%s: malformed subject or image token", e.Name)
	default:
		return fmt.Sprintf("%s: unrecognized image name", e.Name)
	}
}

const (
	NameErrExtension     = "extension"
	NameErrSubjectMarker = "subject_marker"
	NameErrImageMarker   = "image_marker"
	NameErrToken         = "token"
)
