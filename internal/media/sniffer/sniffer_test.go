package sniffer

import (
	"errors"
	"testing"
)

func TestDetectHead(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want MediaType
	}{
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0}, TypePNG},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, TypeJPEG},
		{"gif", []byte("GIF89a..."), TypeGIF},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), TypeWEBP},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectHead(tc.head)
			if err != nil {
				t.Fatalf("DetectHead() error = %v", err)
			}
			if got.Type != tc.want {
				t.Errorf("DetectHead() = %q, want %q", got.Type, tc.want)
			}
		})
	}

	if _, err := DetectHead([]byte("<svg></svg>")); !errors.Is(err, ErrUnknownType) {
		t.Errorf("svg should be unknown, got %v", err)
	}
}

func TestContentTypeFallback(t *testing.T) {
	if got := ContentType(nil, "image/png"); got != "image/png" {
		t.Errorf("ContentType(nil) = %q", got)
	}
	if got := ContentType([]byte{0xff, 0xd8, 0xff, 0xdb}, "image/png"); got != "image/jpeg" {
		t.Errorf("ContentType(jpeg) = %q", got)
	}
}
