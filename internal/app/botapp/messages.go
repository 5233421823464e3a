package botapp

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Abinayanafaiq/BotDating/internal/domain/enums"
	"github.com/Abinayanafaiq/BotDating/internal/services/matchmaking"
)

const (
	welcomeText = "👋 Selamat datang di Anonymous Dating Bot!\n\n" +
		"Isi dulu profil kamu:\n" +
		"• /setgender <pria|wanita>\n" +
		"• /setregion <nama provinsi>\n\n" +
		"Perintah lain:\n" +
		"• /find - mulai mencari pasangan\n" +
		"• /next - ganti pasangan\n" +
		"• /stop - keluar dari chat\n" +
		"• /status - lihat status kamu\n" +
		"• /upgrade - jadi PRO 💎\n" +
		"• /verify - cek pembayaran\n" +
		"• /pro - lihat status & keuntungan PRO\n"

	setGenderUsage    = "Format: /setgender <pria|wanita>"
	invalidGenderText = "Pilih 'pria' atau 'wanita'."
	setRegionUsage    = "Format: /setregion <provinsi>"
	invalidRegionText = "Provinsi tidak dikenali. Contoh: Jawa Barat, Bali, Jakarta."

	profileIncompleteText = "Isi dulu data kamu pakai /setgender dan /setregion."
	alreadyInSessionText  = "Kamu masih dalam percakapan. /stop dulu kalau mau cari lagi."
	chooseGenderText      = "Pilih gender target:"
	manualFindText        = "Ketik manual: /find <gender> <provinsi>\nContoh: /find wanita Bali"
	findUsage             = "Format: /find <pria|wanita|semua> [provinsi]"
	searchAgainText       = "🔁 Oke, mencari lagi..."

	matchedText          = "🔗 Kamu terhubung! Ketik /stop untuk keluar."
	partnerLeftText      = "❌ Pasanganmu keluar dari chat."
	leftSessionText      = "❌ Kamu keluar dari chat."
	afterStopText        = "Mau cari lagi atau upgrade?"
	searchCancelledText  = "🚫 Pencarian dibatalkan."
	notSearchingText     = "Kamu sedang tidak mencari pasangan."
	notPairedText        = "Kamu belum terhubung. Gunakan /find untuk mencari."
	unsupportedMediaText = "Jenis pesan ini belum didukung."
	relayFailedText      = "⚠️ Gagal mengirim pesan."

	orderFailedText    = "⚠️ Gagal membuat order QRIS. Coba lagi nanti."
	nothingPendingText = "Tidak ada pembayaran yang menunggu. Ketik /upgrade untuk membuat order."
	unknownCommandText = "Perintah tidak dikenal. Ketik /help."
	unknownActionText  = "Aksi tidak dikenal"
	serviceErrorText   = "⚠️ Terjadi kesalahan. Coba lagi nanti."
)

const expiryLayout = "2006-01-02 15:04 UTC"

func formatRupiah(amount int) string {
	digits := strconv.Itoa(amount)
	if len(digits) <= 3 {
		return "Rp" + digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return "Rp" + b.String()
}

func formatExpiry(exp *time.Time) string {
	if exp == nil {
		return "-"
	}
	return exp.UTC().Format(expiryLayout)
}

func proActiveText(exp *time.Time, days int) string {
	return fmt.Sprintf("💎 Kamu pengguna PRO aktif!\nBerlaku sampai %s\n\n"+
		"Fitur PRO:\n• Filter gender & wilayah\n• Match lebih cepat\n• Masa aktif %d hari",
		formatExpiry(exp), days)
}

func proInactiveText(price int) string {
	return fmt.Sprintf("🆓 Kamu user biasa.\n\nUpgrade ke PRO cuma %s\n"+
		"• Bisa pilih gender & wilayah\n• Prioritas match\nKetik /upgrade untuk bayar via QRIS 💳",
		formatRupiah(price))
}

func freeSearchText(price int) string {
	return fmt.Sprintf("🆓 Kamu user biasa, pencarian acak tanpa filter.\n"+
		"💎 Mau cari berdasarkan gender & wilayah?\nUpgrade cuma %s, /upgrade sekarang!", formatRupiah(price))
}

func upgradeHintText(price int) string {
	return fmt.Sprintf("💎 Upgrade ke PRO cuma %s!\nKetik /upgrade untuk bayar via QRIS 📲", formatRupiah(price))
}

func orderCreatedText(amount int, paymentURL string) string {
	text := fmt.Sprintf("💎 Upgrade PRO\n\nHarga: %s\n", formatRupiah(amount))
	if paymentURL != "" {
		text += "Klik tombol di bawah untuk bayar via QRIS:\n\n" + paymentURL + "\n\n"
	} else {
		text += "Scan kode QRIS berikut untuk membayar.\n\n"
	}
	return text + "Setelah bayar, akun kamu aktif otomatis dalam beberapa menit. Ketik /verify untuk cek manual."
}

func activatedText(exp *time.Time) string {
	return fmt.Sprintf("💎 Pembayaran diterima! PRO aktif sampai %s.", formatExpiry(exp))
}

func genderLabel(g enums.Gender) string {
	if g == enums.GenderUnset {
		return "semua"
	}
	return string(g)
}

func regionLabel(region string) string {
	if region == "" {
		return "semua"
	}
	return region
}

func waitingText(filters matchmaking.Filters) string {
	text := "Menunggu pasangan..."
	if filters.TargetGender != enums.GenderUnset {
		text += "\n🎯 Gender: " + string(filters.TargetGender)
	}
	if filters.TargetRegion != "" {
		text += "\n📍 Wilayah: " + filters.TargetRegion
	}
	return text
}

func targetText(filters matchmaking.Filters) string {
	return fmt.Sprintf("🎯 Target: %s, 📍 %s\n\n🔎 Mencari pasangan...", genderLabel(filters.TargetGender), regionLabel(filters.TargetRegion))
}

func rateLimitedText(retryAfter int64) string {
	return fmt.Sprintf("⏳ Terlalu sering mencari. Coba lagi dalam %d detik.", retryAfter)
}

func statusText(status matchmaking.Status) string {
	switch status {
	case matchmaking.StatusPaired:
		return "💬 Kamu sedang mengobrol. /stop untuk keluar, /next untuk ganti pasangan."
	case matchmaking.StatusWaiting:
		return "⏳ Kamu sedang menunggu pasangan. /stop untuk membatalkan."
	default:
		return "😴 Kamu tidak sedang mencari. Ketik /find untuk mulai."
	}
}
