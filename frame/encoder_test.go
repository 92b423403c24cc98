package frame_test

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/tailored-agentic-units/radadapter/frame"
	"github.com/tailored-agentic-units/radadapter/radius"
	"github.com/tailored-agentic-units/radadapter/rlm"
)

// recordingWriter counts Write and Flush calls.
type recordingWriter struct {
	bytes.Buffer
	writes  int
	flushes int
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func (w *recordingWriter) Flush() error {
	w.flushes++
	return nil
}

type failingWriter struct {
	err error
}

func (w failingWriter) Write(p []byte) (int, error) {
	return 0, w.err
}

type failingCodec struct {
	err error
}

func (c failingCodec) AppendPacket(dst []byte, p *radius.Packet) ([]byte, error) {
	return append(dst, 0xEE), c.err
}

func (c failingCodec) AppendAttributes(dst []byte, l *radius.AttributeList) ([]byte, error) {
	return dst, nil
}

func encode(t *testing.T, enc *frame.Encoder, code rlm.Code, packets []*radius.Packet, items *radius.AttributeList) []byte {
	t.Helper()
	b, err := enc.Encode(code, packets, items)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return b
}

func TestEncode_ExactBytes(t *testing.T) {
	tests := []struct {
		name    string
		packets []*radius.Packet
		items   *radius.AttributeList
		want    []byte
	}{
		{
			// 1 code + 1 count + 4 config length follow the prefix.
			name:  "no packets no items",
			items: &radius.AttributeList{},
			want: []byte{
				0, 0, 0, 6,
				2,
				0,
				0, 0, 0, 0,
			},
		},
		{
			name:    "primary only",
			packets: []*radius.Packet{radius.NewPacket(radius.CodeAccessRequest, 42)},
			want: []byte{
				0, 0, 0, 18,
				2,
				1,
				0, 0, 0, 1, 0, 0, 0, 42, 0, 0, 0, 0,
				0, 0, 0, 0,
			},
		},
	}

	enc := frame.NewEncoder(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encode(t, enc, rlm.OK, tt.packets, tt.items)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode() = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestEncode_LengthFields(t *testing.T) {
	tests := []struct {
		packets int
		attrs   int
	}{
		{packets: 1, attrs: 0},
		{packets: 1, attrs: 3},
		{packets: 3, attrs: 1},
		{packets: 5, attrs: 10},
	}

	enc := frame.NewEncoder(nil)

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dp_%da", tt.packets, tt.attrs), func(t *testing.T) {
			packets := make([]*radius.Packet, tt.packets)
			for i := range packets {
				packets[i] = radius.NewPacket(radius.CodeAccessRequest, uint8(i),
					radius.StringAttribute(radius.AttrUserName, fmt.Sprintf("user-%d", i)),
				)
			}

			var items radius.AttributeList
			for i := 0; i < tt.attrs; i++ {
				items.Add(radius.StringAttribute(radius.AttrReplyMessage, fmt.Sprintf("msg %d", i)))
			}
			attrsEncoding, err := radius.AppendAttributes(nil, &items)
			if err != nil {
				t.Fatalf("AppendAttributes() error = %v", err)
			}

			b := encode(t, enc, rlm.UPDATED, packets, &items)

			if got := binary.BigEndian.Uint32(b[0:4]); got != uint32(len(b)-4) {
				t.Errorf("total_frame_length = %d, want %d", got, len(b)-4)
			}
			if b[4] != byte(rlm.UPDATED) {
				t.Errorf("module_return_code = %d, want %d", b[4], rlm.UPDATED)
			}
			if b[5] != byte(tt.packets) {
				t.Errorf("packet_count = %d, want %d", b[5], tt.packets)
			}

			off := 6
			for _, p := range packets {
				off += radius.PackedPacketLen(p)
			}
			if got := binary.BigEndian.Uint32(b[off : off+4]); got != uint32(len(attrsEncoding)) {
				t.Errorf("config_items_length = %d, want %d", got, len(attrsEncoding))
			}
			if !bytes.Equal(b[off+4:], attrsEncoding) {
				t.Errorf("config items = % x, want % x", b[off+4:], attrsEncoding)
			}
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	enc := frame.NewEncoder(nil)

	packets := []*radius.Packet{
		radius.NewPacket(radius.CodeAccessRequest, 9, radius.StringAttribute(radius.AttrUserName, "bob")),
		radius.NewPacket(radius.CodeAccessAccept, 9, radius.StringAttribute(radius.AttrReplyMessage, "hello")),
	}
	var items radius.AttributeList
	items.Add(radius.Attribute{Type: radius.AttrSessionTimeout, Op: radius.OpSet, Value: []byte("600")})

	b := encode(t, enc, rlm.HANDLED, packets, &items)

	f, err := frame.Decode(b)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if f.Code != rlm.HANDLED {
		t.Errorf("Code = %s, want HANDLED", f.Code)
	}
	if f.Length != uint32(len(b)-4) {
		t.Errorf("Length = %d, want %d", f.Length, len(b)-4)
	}
	if len(f.Packets) != 2 || f.Packets[1].Code != radius.CodeAccessAccept {
		t.Fatalf("Packets = %v, want request then accept", f.Packets)
	}
	if f.ConfigItemsLength != uint32(radius.PackedAttributesLen(&items)) {
		t.Errorf("ConfigItemsLength = %d, want %d", f.ConfigItemsLength, radius.PackedAttributesLen(&items))
	}

	attr, ok := f.ConfigItems.Get(radius.AttrSessionTimeout)
	if !ok || attr.Op != radius.OpSet || string(attr.Value) != "600" {
		t.Errorf("Session-Timeout = %v, %v, want := \"600\"", attr, ok)
	}
}

func TestEncode_Errors(t *testing.T) {
	tooMany := make([]*radius.Packet, 256)
	for i := range tooMany {
		tooMany[i] = radius.NewPacket(radius.CodeAccessRequest, 1)
	}

	var big radius.AttributeList
	big.Add(radius.NewAttribute(radius.AttrClass, make([]byte, 100)))

	tests := []struct {
		name    string
		cfg     *frame.Config
		packets []*radius.Packet
		items   *radius.AttributeList
		wantErr error
	}{
		{"too many packets", nil, tooMany, nil, frame.ErrTooManyPackets},
		{"frame too large", &frame.Config{MaxFrameSize: 64}, []*radius.Packet{radius.NewPacket(1, 1)}, &big, frame.ErrFrameTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := frame.NewEncoder(tt.cfg).Encode(rlm.OK, tt.packets, tt.items)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Encode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteResponse_SingleWriteAndFlush(t *testing.T) {
	enc := frame.NewEncoder(nil)
	w := &recordingWriter{}

	n, err := enc.WriteResponse(w, rlm.REJECT, []*radius.Packet{radius.NewPacket(1, 3)}, nil)
	if err != nil {
		t.Fatalf("WriteResponse() error = %v", err)
	}

	if w.writes != 1 || w.flushes != 1 {
		t.Errorf("got %d writes and %d flushes, want 1 and 1", w.writes, w.flushes)
	}
	if n != w.Len() {
		t.Errorf("WriteResponse() = %d bytes, writer has %d", n, w.Len())
	}
	if w.Bytes()[4] != byte(rlm.REJECT) {
		t.Errorf("module_return_code = %d, want %d", w.Bytes()[4], rlm.REJECT)
	}
}

func TestWriteResponse_BufferedWriter(t *testing.T) {
	enc := frame.NewEncoder(nil)
	var out bytes.Buffer
	bw := bufio.NewWriterSize(&out, 16)

	if _, err := enc.WriteResponse(bw, rlm.OK, []*radius.Packet{radius.NewPacket(1, 3)}, nil); err != nil {
		t.Fatalf("WriteResponse() error = %v", err)
	}

	f, err := frame.ReadFrame(&out, 0)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if f.Code != rlm.OK {
		t.Errorf("Code = %s, want OK", f.Code)
	}
}

func TestWriteResponse_WriteError(t *testing.T) {
	enc := frame.NewEncoder(nil)
	broken := errors.New("connection reset")

	_, err := enc.WriteResponse(failingWriter{err: broken}, rlm.OK, []*radius.Packet{radius.NewPacket(1, 1)}, nil)
	if !errors.Is(err, broken) {
		t.Errorf("WriteResponse() error = %v, want %v", err, broken)
	}
}

func TestWriteResponse_CodecErrorWritesNothing(t *testing.T) {
	broken := errors.New("unencodable")
	enc := frame.NewEncoder(nil, frame.WithCodec(failingCodec{err: broken}))
	w := &recordingWriter{}

	_, err := enc.WriteResponse(w, rlm.OK, []*radius.Packet{radius.NewPacket(1, 1)}, nil)
	if !errors.Is(err, broken) {
		t.Errorf("WriteResponse() error = %v, want %v", err, broken)
	}
	if w.writes != 0 || w.flushes != 0 {
		t.Errorf("got %d writes and %d flushes, want none", w.writes, w.flushes)
	}
}

func TestEncoder_BufferReuseIsClean(t *testing.T) {
	enc := frame.NewEncoder(nil)

	var big radius.AttributeList
	big.Add(radius.NewAttribute(radius.AttrClass, bytes.Repeat([]byte{'x'}, 500)))
	encode(t, enc, rlm.OK, []*radius.Packet{radius.NewPacket(1, 1)}, &big)

	got := encode(t, enc, rlm.OK, nil, nil)
	want := []byte{0, 0, 0, 6, 2, 0, 0, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() after large frame = % x, want % x", got, want)
	}
}

func TestReadFrame_Errors(t *testing.T) {
	b := encode(t, frame.NewEncoder(nil), rlm.OK, []*radius.Packet{radius.NewPacket(1, 1)}, nil)

	tests := []struct {
		name    string
		input   []byte
		maxSize int
		wantErr error
	}{
		{"truncated body", b[:len(b)-2], 0, frame.ErrShortFrame},
		{"over limit", b, 8, frame.ErrFrameTooLarge},
		{"empty stream", nil, 0, io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := frame.ReadFrame(bytes.NewReader(tt.input), tt.maxSize); !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadFrame() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	b := encode(t, frame.NewEncoder(nil), rlm.OK, nil, nil)

	if _, err := frame.Decode(append(b, 0)); !errors.Is(err, frame.ErrLengthMismatch) {
		t.Errorf("Decode(extra byte) error = %v, want ErrLengthMismatch", err)
	}
	if _, err := frame.Decode(b[:5]); !errors.Is(err, frame.ErrShortFrame) {
		t.Errorf("Decode(short) error = %v, want ErrShortFrame", err)
	}
}
