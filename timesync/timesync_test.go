package timesync

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchcore/datetime"
)

var sample = datetime.Calendar{Year: 2026, Month: 10, Day: 14, DayOfWeek: datetime.Wednesday, Hour: 9, Minute: 41, Second: 7}

func TestFrameRoundTrip(t *testing.T) {
	frame := AppendFrame(nil, 3, sample)
	require.Equal(t, int(frame[0]), len(frame))
	assert.Equal(t, byte(frameSync), frame[len(frame)-1])

	cal, seq, n, err := ParseFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, sample, cal)
	assert.Equal(t, uint8(3), seq)
	assert.Equal(t, len(frame), n)
}

func TestParseFrameRejectsCorruption(t *testing.T) {
	frame := AppendFrame(nil, 0, sample)
	frame[4] ^= 0x01

	_, _, n, err := ParseFrame(frame)
	assert.ErrorIs(t, err, ErrBadFrame)
	assert.Equal(t, 1, n)
}

func TestParseFrameShort(t *testing.T) {
	frame := AppendFrame(nil, 0, sample)
	_, _, n, err := ParseFrame(frame[:len(frame)-1])
	assert.ErrorIs(t, err, ErrShortFrame)
	assert.Zero(t, n)
}

func TestVLQSpansMultipleBytes(t *testing.T) {
	for _, v := range []int32{0, 1, 95, 96, 2026, 1 << 20, -1, -33} {
		b := appendVLQ(nil, v)
		got, n, err := readVLQ(b)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(b), n)
	}
	assert.Len(t, appendVLQ(nil, 2026), 2)
}

func TestDecoderResynchronizes(t *testing.T) {
	var stream []byte
	stream = append(stream, 0x00, 0x7E, 0x42)
	stream = AppendFrame(stream, 1, sample)
	stream = append(stream, 0xFF)
	later := sample
	later.Second = 8
	stream = AppendFrame(stream, 2, later)

	var got []datetime.Calendar
	var seqs []uint8
	var d Decoder
	fn := func(cal datetime.Calendar, seq uint8) {
		got = append(got, cal)
		seqs = append(seqs, seq)
	}

	// Deliver in awkward pieces.
	delivered := 0
	for len(stream) > 0 {
		k := min(5, len(stream))
		delivered += d.Feed(stream[:k], fn)
		stream = stream[k:]
	}

	assert.Equal(t, 2, delivered)
	assert.Equal(t, []datetime.Calendar{sample, later}, got)
	assert.Equal(t, []uint8{1, 2}, seqs)
	assert.Equal(t, 4, d.Skipped())
}

func TestSenderSequence(t *testing.T) {
	var out bytes.Buffer
	s := NewSender(&out)
	at := time.Date(2024, time.February, 29, 23, 59, 58, 0, time.UTC)
	for i := 0; i < 17; i++ {
		require.NoError(t, s.Send(at))
	}

	var seqs []uint8
	var d Decoder
	n := d.Feed(out.Bytes(), func(cal datetime.Calendar, seq uint8) {
		assert.Equal(t, at, cal.Time())
		assert.Equal(t, datetime.Thursday, cal.DayOfWeek)
		seqs = append(seqs, seq)
	})
	require.Equal(t, 17, n)
	assert.Equal(t, uint8(0), seqs[0])
	assert.Equal(t, uint8(15), seqs[15])
	assert.Equal(t, uint8(0), seqs[16], "sequence wraps at 4 bits")
	assert.Zero(t, d.Skipped())
}

func TestSenderWriteError(t *testing.T) {
	s := NewSender(failingWriter{})
	assert.ErrorIs(t, s.Send(time.Now()), assert.AnError)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, assert.AnError }
