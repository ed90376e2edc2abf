package enums

type MediaCodec string

const (
	MediaCodecAAC MediaCodec = "aac"
	MediaCodecMP3 MediaCodec = "mp3"
)

// file extension used for a saved track of this codec
func (c MediaCodec) Extension() string {
	switch c {
	case MediaCodecAAC:
		return "m4a"
	default:
		return string(c)
	}
}
