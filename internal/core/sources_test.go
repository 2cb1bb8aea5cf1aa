package core

import (
	"errors"
	"testing"
)

func TestParseBufferKind(t *testing.T) {
	tests := []struct {
		in      string
		want    BufferKind
		wantErr bool
	}{
		{in: "markup", want: BufferMarkup},
		{in: "HTML", want: BufferMarkup},
		{in: "styles", want: BufferStyles},
		{in: "css", want: BufferStyles},
		{in: "script", want: BufferScript},
		{in: " js ", want: BufferScript},
		{in: "python", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBufferKind(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSourcesGetSet(t *testing.T) {
	var src Sources
	src.Set(BufferMarkup, "m")
	src.Set(BufferStyles, "s")
	src.Set(BufferScript, "j")

	for kind, want := range map[BufferKind]string{BufferMarkup: "m", BufferStyles: "s", BufferScript: "j"} {
		if got := src.Get(kind); got != want {
			t.Errorf("%s: got %q, want %q", kind, got, want)
		}
	}
}

func TestBufferKindText(t *testing.T) {
	var k BufferKind
	if err := k.UnmarshalText([]byte("css")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	text, err := k.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(text) != "styles" {
		t.Errorf("expected canonical name styles, got %s", text)
	}
}
