package indexer

import (
	"errors"
	"testing"
)

func TestParseImageName(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		want    ImageName
		errKind string
	}{
		{name: "simple", file: "ADNI_S123_I456.nii", want: ImageName{SubjectToken: "S123", ImageToken: "I456"}},
		{
			name: "adni download",
			file: "ADNI_002_S_0295_MR_MPR__GradWarp__B1_Correction__N3__Scaled_Br_20070319114336780_S13408_I45108.nii",
			want: ImageName{SubjectToken: "S13408", ImageToken: "I45108"},
		},
		{name: "wrong extension", file: "ADNI_S123_I456.nii.gz", errKind: NameErrExtension},
		{name: "extension only", file: ".nii", errKind: NameErrExtension},
		{name: "no subject marker", file: "ADNI_123_I456.nii", errKind: NameErrSubjectMarker},
		{name: "image before subject", file: "ADNI_I456_S123.nii", errKind: NameErrImageMarker},
		{name: "empty subject token", file: "ADNI_S_I456.nii", errKind: NameErrToken},
		{name: "empty image token", file: "ADNI_S123_I.nii", errKind: NameErrToken},
		{name: "non alphanumeric token", file: "ADNI_S12-3_I456.nii", errKind: NameErrToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseImageName(tt.file, ".nii")
			if tt.errKind != "" {
				var nameErr *NameError
				if !errors.As(err, &nameErr) {
					t.Fatalf("expected *NameError, got %v", err)
				}
				if nameErr.Kind != tt.errKind {
					t.Fatalf("kind = %q, want %q", nameErr.Kind, tt.errKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseImageName: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseImageNameCustomExtension(t *testing.T) {
	got, err := ParseImageName("X_S1_I2.nii.gz", ".nii.gz")
	if err != nil {
		t.Fatalf("ParseImageName: %v", err)
	}
	if got.ImageToken != "I2" {
		t.Fatalf("image token = %q", got.ImageToken)
	}
}
