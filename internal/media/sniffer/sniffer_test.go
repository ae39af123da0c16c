package sniffer

import (
	"errors"
	"net/http"
	"testing"
)

func TestDetectHead(t *testing.T) {
	cases := []struct {
		name string
		head []byte
		want MediaType
		mime string
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}, TypeJPEG, "image/jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00}, TypePNG, "image/png"},
		{"gif87a", []byte("GIF87a......"), TypeGIF, "image/gif"},
		{"gif89a", []byte("GIF89a......"), TypeGIF, "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), TypeWEBP, "image/webp"},
		{"heic", append([]byte{0x00, 0x00, 0x00, 0x18}, []byte("ftypheic....")...), TypeHEIC, "image/heic"},
		{"heix", append([]byte{0x00, 0x00, 0x00, 0x18}, []byte("ftypheix....")...), TypeHEIC, "image/heic"},
		{"mif1", append([]byte{0x00, 0x00, 0x00, 0x18}, []byte("ftypmif1....")...), TypeHEIC, "image/heic"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectHead(tc.head)
			if err != nil {
				t.Fatalf("detect: %v", err)
			}
			if got.Type != tc.want || got.MIME != tc.mime {
				t.Fatalf("detect = %+v, want %s/%s", got, tc.want, tc.mime)
			}
		})
	}
}

func TestDetectHeadRejectsNonPhotos(t *testing.T) {
	cases := []struct {
		name string
		head []byte
	}{
		{"empty", nil},
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg">`)},
		{"pdf", []byte("%PDF-1.7")},
		{"text", []byte("hello world")},
		{"mp4", append([]byte{0x00, 0x00, 0x00, 0x18}, []byte("ftypisom....")...)},
		{"truncated riff", []byte("RIFF")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DetectHead(tc.head); !errors.Is(err, ErrUnknownType) {
				t.Fatalf("err = %v, want ErrUnknownType", err)
			}
		})
	}
}

func TestMimeTypeFromHTTP(t *testing.T) {
	header := http.Header{}
	if got := MimeTypeFromHTTP(header); got != "" {
		t.Fatalf("empty header = %q", got)
	}

	header.Set("Content-Type", "image/jpeg")
	if got := MimeTypeFromHTTP(header); got != "image/jpeg" {
		t.Fatalf("plain = %q", got)
	}

	header.Set("Content-Type", "image/png; charset=binary")
	if got := MimeTypeFromHTTP(header); got != "image/png" {
		t.Fatalf("with params = %q", got)
	}
}
