package legacy

import "testing"

func TestParseTagType(t *testing.T) {
	tests := []struct {
		in     string
		want   TagType
		wantOK bool
	}{
		{"universe", TagUniverse, true},
		{"gallery", TagGallery, true},
		{"model", TagModel, true},
		{"exposure", TagExposure, true},
		{"feature", TagFeature, true},
		{"rating", TagUnknown, false},
		{"Model", TagUnknown, false},
		{"", TagUnknown, false},
	}

	for _, tt := range tests {
		got, ok := ParseTagType(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseTagType(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
		if ok && got.String() != tt.in {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), tt.in)
		}
	}
}

func TestTagUnknownString(t *testing.T) {
	if got := TagUnknown.String(); got != "unknown" {
		t.Fatalf("TagUnknown.String() = %q", got)
	}
}
