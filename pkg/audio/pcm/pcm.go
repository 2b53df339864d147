package pcm

import (
	"encoding/binary"
	"fmt"
)

// ContentType returns the MIME type of mono 16-bit PCM at rate.
func ContentType(rate int) string {
	return fmt.Sprintf("audio/L16; rate=%d; channels=1", rate)
}

// Int16ToBytes encodes samples as little-endian 16-bit PCM.
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}
