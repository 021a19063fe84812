package timesync

import (
	"io"
	"time"

	"watchcore/datetime"
)

// Sender writes set-time frames with a rolling sequence number.
type Sender struct {
	w   io.Writer
	seq uint8
	buf []byte
}

func NewSender(w io.Writer) *Sender {
	return &Sender{w: w, buf: make([]byte, 0, frameMax)}
}

// Send writes one frame carrying t in UTC.
func (s *Sender) Send(t time.Time) error {
	s.buf = AppendFrame(s.buf[:0], s.seq, datetime.FromTime(t.UTC()))
	s.seq = (s.seq + 1) & seqMask
	_, err := s.w.Write(s.buf)
	return err
}
