package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Abinayanafaiq/BotDating/internal/domain/enums"
)

func TestClassifyMessage(t *testing.T) {
	testCases := []struct {
		name string
		msg  *tgbotapi.Message
		want enums.MediaKind
	}{
		{name: "nil", msg: nil, want: enums.MediaKindOther},
		{name: "text", msg: &tgbotapi.Message{Text: "halo"}, want: enums.MediaKindText},
		{name: "photo with caption", msg: &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "p"}}, Caption: "x"}, want: enums.MediaKindPhoto},
		{name: "animation wins over document", msg: &tgbotapi.Message{Animation: &tgbotapi.Animation{}, Document: &tgbotapi.Document{}}, want: enums.MediaKindAnimation},
		{name: "video", msg: &tgbotapi.Message{Video: &tgbotapi.Video{}}, want: enums.MediaKindVideo},
		{name: "voice", msg: &tgbotapi.Message{Voice: &tgbotapi.Voice{}}, want: enums.MediaKindVoice},
		{name: "sticker", msg: &tgbotapi.Message{Sticker: &tgbotapi.Sticker{}}, want: enums.MediaKindSticker},
		{name: "location", msg: &tgbotapi.Message{Location: &tgbotapi.Location{}}, want: enums.MediaKindOther},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyMessage(tc.msg); got != tc.want {
				t.Fatalf("ClassifyMessage() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestBuildInlineKeyboard(t *testing.T) {
	markup := BuildInlineKeyboard([][]InlineButton{
		{{Text: "Pria", Data: "find_gender_pria"}, {Text: "Wanita", Data: "find_gender_wanita"}},
		{{Text: "Bayar", URL: "https://pay.example"}},
	})

	if len(markup.InlineKeyboard) != 2 || len(markup.InlineKeyboard[0]) != 2 {
		t.Fatalf("unexpected keyboard shape: %+v", markup.InlineKeyboard)
	}
	first := markup.InlineKeyboard[0][0]
	if first.CallbackData == nil || *first.CallbackData != "find_gender_pria" {
		t.Fatalf("unexpected callback data: %+v", first)
	}
	link := markup.InlineKeyboard[1][0]
	if link.URL == nil || *link.URL != "https://pay.example" || link.CallbackData != nil {
		t.Fatalf("unexpected url button: %+v", link)
	}
}
