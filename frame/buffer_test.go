package frame_test

import (
	"bytes"
	"testing"

	"github.com/tailored-agentic-units/radadapter/frame"
)

func TestBuffer_ReserveAndPatch(t *testing.T) {
	b := frame.NewBuffer(0)

	off := b.Reserve32()
	b.PutUint8(0xAB)
	b.PutUint32(0x01020304)
	b.PatchUint32(off, uint32(b.Len()-4))

	want := []byte{0, 0, 0, 5, 0xAB, 1, 2, 3, 4}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("Bytes() = % x, want % x", b.Bytes(), want)
	}

	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", b.Len())
	}
}
