// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bits

// Writer writes a MSB-first bit stream.
type Writer struct {
	buf    []byte
	offset int // bit base
}

// NewWriter returns a new Writer with an initial capacity in bytes.
func NewWriter(capacity int) *Writer {
	return &Writer{
		buf: make([]byte, 0, capacity),
	}
}

// Write writes the low n bits of v.
func (w *Writer) Write(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		w.WriteBit(uint8(v>>uint(i)) & 1)
	}
}

// WriteBit writes a bit.
func (w *Writer) WriteBit(b uint8) {
	if w.offset&0x7 == 0 {
		w.buf = append(w.buf, 0)
	}
	if b&1 != 0 {
		w.buf[w.offset>>3] |= 0x80 >> uint(w.offset&0x7)
	}
	w.offset++
}

// WriteBool writes a one bit flag.
func (w *Writer) WriteBool(b bool) {
	if b {
		w.WriteBit(1)
	} else {
		w.WriteBit(0)
	}
}

// WriteUe writes an unsigned Exp-Golomb code.
func (w *Writer) WriteUe(v uint32) {
	code := uint64(v) + 1
	n := 0
	for tmp := code; tmp > 1; tmp >>= 1 {
		n++
	}
	w.Write(0, n)
	w.Write(code, n+1)
}

// WriteSe writes a signed Exp-Golomb code.
func (w *Writer) WriteSe(v int32) {
	if v > 0 {
		w.WriteUe(uint32(v)*2 - 1)
	} else {
		w.WriteUe(uint32(-v) * 2)
	}
}

// Align pads zero bits up to the next byte boundary.
func (w *Writer) Align() {
	if rem := w.offset & 0x7; rem != 0 {
		w.offset += 8 - rem
	}
}

// Offset returns the number of bits written.
func (w *Writer) Offset() int {
	return w.offset
}

// Bytes returns the written bytes, the last byte zero padded.
func (w *Writer) Bytes() []byte {
	return w.buf
}
