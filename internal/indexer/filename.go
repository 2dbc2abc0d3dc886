package indexer

import (
	"strings"
	"unicode"
)

// ImageName holds the tokens embedded in an image file name, marker letter
// included (e.g. "S13408", "I45108").
type ImageName struct {
	SubjectToken string
	ImageToken   string
}

// ParseImageName extracts the subject-scoped and image tokens from name. The
// last "_S" marker and the last "_I" marker after it are used, so prefixes such
// as "ADNI_002_S_0295_MR_..._S13408_I45108.nii" resolve to S13408 / I45108.
func ParseImageName(name, extension string) (ImageName, error) {
	if extension == "" {
		extension = ".nii"
	}
	if !strings.HasSuffix(name, extension) || len(name) == len(extension) {
		return ImageName{}, &NameError{Kind: NameErrExtension, Name: name}
	}
	stem := strings.TrimSuffix(name, extension)

	subjectAt := strings.LastIndex(stem, "_S")
	if subjectAt < 0 {
		return ImageName{}, &NameError{Kind: NameErrSubjectMarker, Name: name}
	}
	imageAt := strings.LastIndex(stem, "_I")
	if imageAt < subjectAt {
		return ImageName{}, &NameError{Kind: NameErrImageMarker, Name: name}
	}

	subject := stem[subjectAt+1 : imageAt]
	image := stem[imageAt+1:]
	if !validToken(subject) || !validToken(image) {
		return ImageName{}, &NameError{Kind: NameErrToken, Name: name}
	}
	return ImageName{SubjectToken: subject, ImageToken: image}, nil
}

// validToken requires the marker letter plus at least one more alphanumeric rune.
func validToken(token string) bool {
	if len(token) < 2 {
		return false
	}
	for _, r := range token {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
