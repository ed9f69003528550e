package audio

import (
	"bytes"
	"encoding/binary"
)

// Narration PCM format produced by the speech provider.
const (
	SampleRate    = 24000
	Channels      = 1
	BitsPerSample = 16
)

// WAV frames little-endian PCM16 samples in a RIFF/WAVE container.
func WAV(pcm []byte) []byte {
	const headerSize = 44
	blockAlign := Channels * BitsPerSample / 8
	byteRate := SampleRate * blockAlign

	var buf bytes.Buffer
	buf.Grow(headerSize + len(pcm))

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(Channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(BitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
