// Package timesync carries wall-clock time to the watch over a serial line
// when no BLE central is available, e.g. on the bench.
//
// A frame is laid out as
//
//	len | 0x10|seq | payload... | crc16 hi | crc16 lo | 0x7E
//
// where len counts the whole frame and the CRC covers everything before it.
// The payload is a message id followed by the Calendar fields, each a VLQ.
package timesync

import (
	"errors"
	"fmt"

	"watchcore/datetime"
)

const (
	frameHeader  = 2
	frameTrailer = 3
	frameMin     = frameHeader + frameTrailer
	frameMax     = 64
	frameSync    = 0x7E
	seqDest      = 0x10
	seqMask      = 0x0F

	msgSetTime = 1
)

var (
	// ErrShortFrame means more bytes are needed to decide.
	ErrShortFrame = errors.New("timesync: short frame")
	// ErrBadFrame means the bytes at the head of the buffer are not a frame.
	ErrBadFrame = errors.New("timesync: bad frame")
	// ErrUnknownMessage is a well-formed frame with an unsupported id.
	ErrUnknownMessage = errors.New("timesync: unknown message")
)

// AppendFrame appends a set-time frame for cal to dst.
func AppendFrame(dst []byte, seq uint8, cal datetime.Calendar) []byte {
	start := len(dst)
	dst = append(dst, 0, seqDest|seq&seqMask)
	dst = appendVLQ(dst, msgSetTime)
	for _, v := range fields(cal) {
		dst = appendVLQ(dst, v)
	}
	dst[start] = byte(len(dst) - start + frameTrailer)
	crc := crc16(dst[start:])
	return append(dst, byte(crc>>8), byte(crc), frameSync)
}

func fields(cal datetime.Calendar) [7]int32 {
	return [7]int32{
		int32(cal.Year), int32(cal.Month), int32(cal.Day), int32(cal.DayOfWeek),
		int32(cal.Hour), int32(cal.Minute), int32(cal.Second),
	}
}

// ParseFrame decodes the frame at the head of buf and returns the number of
// bytes it occupies. On ErrShortFrame nothing is consumed; on ErrBadFrame
// one byte should be skipped to resynchronize; on ErrUnknownMessage the
// whole frame should be skipped.
func ParseFrame(buf []byte) (cal datetime.Calendar, seq uint8, n int, err error) {
	if len(buf) == 0 {
		return cal, 0, 0, ErrShortFrame
	}
	size := int(buf[0])
	if size < frameMin || size > frameMax {
		return cal, 0, 1, ErrBadFrame
	}
	if len(buf) < size {
		return cal, 0, 0, ErrShortFrame
	}
	frame := buf[:size]
	if frame[size-1] != frameSync || frame[1]&^seqMask != seqDest {
		return cal, 0, 1, ErrBadFrame
	}
	want := uint16(frame[size-3])<<8 | uint16(frame[size-2])
	if crc16(frame[:size-frameTrailer]) != want {
		return cal, 0, 1, ErrBadFrame
	}
	seq = frame[1] & seqMask

	payload := frame[frameHeader : size-frameTrailer]
	id, k, err := readVLQ(payload)
	if err != nil {
		return cal, seq, size, err
	}
	if id != msgSetTime {
		return cal, seq, size, fmt.Errorf("%w: %d", ErrUnknownMessage, id)
	}
	payload = payload[k:]

	var v [7]int32
	for i := range v {
		v[i], k, err = readVLQ(payload)
		if err != nil {
			return cal, seq, size, err
		}
		if v[i] < 0 || v[i] > 0xFFFF {
			return cal, seq, size, ErrBadFrame
		}
		payload = payload[k:]
	}
	cal = datetime.Calendar{
		Year:      uint16(v[0]),
		Month:     uint8(v[1]),
		Day:       uint8(v[2]),
		DayOfWeek: datetime.DayOfWeek(v[3]),
		Hour:      uint8(v[4]),
		Minute:    uint8(v[5]),
		Second:    uint8(v[6]),
	}
	return cal, seq, size, nil
}

// Decoder reassembles frames from a byte stream.
type Decoder struct {
	buf     []byte
	skipped int
}

// Feed appends p and calls fn for every complete set-time frame. It
// returns the number of frames delivered.
func (d *Decoder) Feed(p []byte, fn func(cal datetime.Calendar, seq uint8)) int {
	d.buf = append(d.buf, p...)
	delivered := 0
	for len(d.buf) > 0 {
		cal, seq, n, err := ParseFrame(d.buf)
		if errors.Is(err, ErrShortFrame) {
			break
		}
		if err != nil {
			d.skipped += n
		} else {
			fn(cal, seq)
			delivered++
		}
		d.buf = d.buf[n:]
	}
	if len(d.buf) == 0 {
		d.buf = d.buf[:0:0]
	}
	return delivered
}

// Skipped returns how many bytes were discarded while resynchronizing.
func (d *Decoder) Skipped() int {
	return d.skipped
}
