package gZipCompression

import (
	"bytes"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	for _, level := range []string{"default", "fastest", "best"} {
		cc := GetDefault()
		cc.Level.Value = level
		g, err := ToProcessor(cc)
		if err != nil {
			t.Fatalf("err = '%s'; want nil", err.Error())
		}
		compressDecompress(t, g, []byte{1, 2, 3, 4, 5})
		compressDecompress(t, g, []byte("test"))
		compressDecompress(t, g, bytes.Repeat([]byte("covert "), 100))
	}
}

func compressDecompress(t *testing.T, g *GZipCompression, b []byte) {
	bcopy := append([]byte{}, b...)
	b2, err := g.Process(b)
	if err != nil {
		t.Errorf("err = '%s'; want nil", err.Error())
	}
	if !bytes.Equal(bcopy, b) {
		t.Errorf("Original array changed")
	}
	b3, err := g.Unprocess(b2)
	if err != nil {
		t.Errorf("err = '%s'; want nil", err.Error())
	}
	if !bytes.Equal(b, b3) {
		t.Errorf("Original array not restored on decompress")
	}
}

func TestUnprocessGarbage(t *testing.T) {
	g, _ := ToProcessor(GetDefault())
	if _, err := g.Unprocess([]byte{1, 2, 3}); err == nil {
		t.Errorf("err = nil; want error")
	}
}
