package pipeline

import "bytes"

// EmitFunc receives one complete text record. The slice is only valid for
// the duration of the call.
type EmitFunc func(record []byte) error

// FrameReassembler turns an arbitrary sequence of raw byte chunks into
// complete newline-terminated records. Chunks may split a record anywhere,
// including mid-escape-sequence; the trailing partial record is buffered
// until more input arrives or Finish is called.
type FrameReassembler struct {
	buf []byte
}

// Feed appends chunk to the internal buffer and emits every complete record
// it now contains. The segment after the final newline (possibly empty)
// becomes the new buffer. Emission stops at the first emit error.
func (f *FrameReassembler) Feed(chunk []byte, emit EmitFunc) error {
	f.buf = append(f.buf, chunk...)

	start := 0
	for {
		i := bytes.IndexByte(f.buf[start:], '\n')
		if i < 0 {
			break
		}
		record := trimCR(f.buf[start : start+i])
		start += i + 1
		if err := emit(record); err != nil {
			f.buf = f.buf[:copy(f.buf, f.buf[start:])]
			return err
		}
	}

	f.buf = f.buf[:copy(f.buf, f.buf[start:])]
	return nil
}

// Finish emits the buffered trailing record, if any, and resets the buffer.
func (f *FrameReassembler) Finish(emit EmitFunc) error {
	if len(f.buf) == 0 {
		return nil
	}
	record := trimCR(f.buf)
	f.buf = nil
	return emit(record)
}

// Pending reports whether a partial record is currently buffered.
func (f *FrameReassembler) Pending() bool {
	return len(f.buf) > 0
}

func trimCR(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\r' {
		return b[:n-1]
	}
	return b
}
