package timesync

// Fields are encoded as Klipper-style VLQs: seven bits per byte, most
// significant group first, continuation in the high bit. Bit 5 and 6 of the
// leading group carry the sign so small negative values stay short.

func appendVLQ(dst []byte, v int32) []byte {
	if !(-(1<<26) <= v && v < (3<<26)) {
		dst = append(dst, byte((v>>28)&0x7F)|0x80)
	}
	if !(-(1<<19) <= v && v < (3<<19)) {
		dst = append(dst, byte((v>>21)&0x7F)|0x80)
	}
	if !(-(1<<12) <= v && v < (3<<12)) {
		dst = append(dst, byte((v>>14)&0x7F)|0x80)
	}
	if !(-(1<<5) <= v && v < (3<<5)) {
		dst = append(dst, byte((v>>7)&0x7F)|0x80)
	}
	return append(dst, byte(v&0x7F))
}

// readVLQ decodes one value from b and returns it with the number of bytes
// consumed.
func readVLQ(b []byte) (int32, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrBadFrame
	}
	c := uint32(b[0])
	v := c & 0x7F
	if c&0x60 == 0x60 {
		v |= ^uint32(0x1F)
	}
	n := 1
	for c&0x80 != 0 {
		if n >= len(b) || n > 4 {
			return 0, 0, ErrBadFrame
		}
		c = uint32(b[n])
		n++
		v = v<<7 | c&0x7F
	}
	return int32(v), n, nil
}

// crc16 is the CCITT variant used by the Klipper serial protocol.
func crc16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b ^= uint8(crc)
		b ^= b << 4
		w := uint16(b)
		crc = (w<<8 | crc>>8) ^ w>>4 ^ w<<3
	}
	return crc
}
