package botapp

import (
	"github.com/Abinayanafaiq/BotDating/internal/domain/rules"
	tginfra "github.com/Abinayanafaiq/BotDating/internal/infra/telegram"
)

const (
	callbackGenderPrefix = "find_gender_"
	callbackRegionPrefix = "find_region_"
	callbackRegionMore   = "find_region_more"
	callbackAny          = "any"
	callbackFindAgain    = "find_again"
	callbackUpgradeNow   = "upgrade_now"
)

func genderKeyboard() [][]tginfra.InlineButton {
	return [][]tginfra.InlineButton{
		{
			{Text: "👨 Pria", Data: callbackGenderPrefix + "pria"},
			{Text: "👩 Wanita", Data: callbackGenderPrefix + "wanita"},
		},
		{
			{Text: "🌐 Semua", Data: callbackGenderPrefix + callbackAny},
		},
	}
}

func regionKeyboard() [][]tginfra.InlineButton {
	rows := make([][]tginfra.InlineButton, 0, len(rules.QuickRegions)+2)
	for _, region := range rules.QuickRegions {
		rows = append(rows, []tginfra.InlineButton{{Text: region, Data: callbackRegionPrefix + region}})
	}
	rows = append(rows,
		[]tginfra.InlineButton{{Text: "🌐 Semua wilayah", Data: callbackRegionPrefix + callbackAny}},
		[]tginfra.InlineButton{{Text: "🌏 Lainnya...", Data: callbackRegionMore}},
	)
	return rows
}

func upgradeKeyboard() [][]tginfra.InlineButton {
	return [][]tginfra.InlineButton{
		{{Text: "💎 Upgrade PRO", Data: callbackUpgradeNow}},
	}
}

func afterStopKeyboard() [][]tginfra.InlineButton {
	return [][]tginfra.InlineButton{
		{{Text: "🔁 Cari lagi", Data: callbackFindAgain}},
		{{Text: "💎 Upgrade PRO", Data: callbackUpgradeNow}},
	}
}

func paymentKeyboard(paymentURL string) [][]tginfra.InlineButton {
	return [][]tginfra.InlineButton{
		{{Text: "💳 Bayar via QRIS", URL: paymentURL}},
	}
}
