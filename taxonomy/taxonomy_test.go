package taxonomy

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		want    Key
		wantErr bool
	}{
		{
			name: "full four segment key",
			raw:  "urn:tag:plot:qloo",
			want: Key{Namespace: "urn", Category: "tag", Subtype: "plot", Source: "qloo"},
		},
		{
			name: "three segment key has empty source",
			raw:  "urn:tag:keyword",
			want: Key{Namespace: "urn", Category: "tag", Subtype: "keyword"},
		},
		{
			name: "music genre key",
			raw:  "urn:tag:genre:music",
			want: Key{Namespace: "urn", Category: "tag", Subtype: "genre", Source: "music"},
		},
		{
			name:    "two segments rejected",
			raw:     "urn:tag",
			wantErr: true,
		},
		{
			name:    "plain word rejected",
			raw:     "plot",
			wantErr: true,
		},
		{
			name:    "empty string rejected",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, ErrUnrecognizedKey) {
					t.Fatalf("Parse(%q) error = %v, want ErrUnrecognizedKey", tc.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestValueSegment(t *testing.T) {
	got, err := ValueSegment("plot:qloo:a grim heist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a grim heist" {
		t.Errorf("ValueSegment = %q, want %q", got, "a grim heist")
	}

	if _, err := ValueSegment("justone"); err == nil {
		t.Error("expected error for malformed tag text")
	}
}

func TestStripEntityURN(t *testing.T) {
	if got := StripEntityURN("urn:entity:book"); got != "book" {
		t.Errorf("StripEntityURN = %q, want book", got)
	}
	if got := StripEntityURN("something-else"); got != "N/A" {
		t.Errorf("StripEntityURN = %q, want N/A", got)
	}
	if got := StripEntityURN("urn:entity:"); got != "N/A" {
		t.Errorf("StripEntityURN empty remainder = %q, want N/A", got)
	}
}
