package enums

// MediaKind is the payload type of a relayed chat message.
type MediaKind string

const (
	MediaKindText      MediaKind = "text"
	MediaKindPhoto     MediaKind = "photo"
	MediaKindVideo     MediaKind = "video"
	MediaKindVoice     MediaKind = "voice"
	MediaKindSticker   MediaKind = "sticker"
	MediaKindAnimation MediaKind = "animation"
	MediaKindDocument  MediaKind = "document"
	MediaKindOther     MediaKind = "other"
)

func (k MediaKind) Relayable() bool {
	switch k {
	case MediaKindText, MediaKindPhoto, MediaKindVideo, MediaKindVoice,
		MediaKindSticker, MediaKindAnimation, MediaKindDocument:
		return true
	default:
		return false
	}
}
