package botapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Abinayanafaiq/BotDating/internal/domain/enums"
	"github.com/Abinayanafaiq/BotDating/internal/domain/rules"
	"github.com/Abinayanafaiq/BotDating/internal/infra/qr"
	tginfra "github.com/Abinayanafaiq/BotDating/internal/infra/telegram"
	entsvc "github.com/Abinayanafaiq/BotDating/internal/services/entitlements"
	"github.com/Abinayanafaiq/BotDating/internal/services/matchmaking"
	profilesvc "github.com/Abinayanafaiq/BotDating/internal/services/profiles"
)

type messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]tginfra.InlineButton) error
	EditText(ctx context.Context, chatID int64, messageID int, text string, rows [][]tginfra.InlineButton) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error
	SendPhoto(ctx context.Context, chatID int64, png []byte, caption string) error
}

type relayObserver interface {
	ObserveRelay(kind enums.MediaKind)
}

type routerConfig struct {
	Price        int
	DurationDays int
}

// router handles every update of the chat bot. The only state it keeps is
// the gender a PRO user picked while the region keyboard is open.
type router struct {
	messenger    messenger
	engine       *matchmaking.Engine
	profiles     *profilesvc.Service
	entitlements *entsvc.Service
	relay        relayObserver
	cfg          routerConfig
	logger       *zap.Logger
	now          func() time.Time

	pendingMu     sync.Mutex
	pendingGender map[int64]enums.Gender
}

func newRouter(m messenger, engine *matchmaking.Engine, profiles *profilesvc.Service, entitlements *entsvc.Service, cfg routerConfig, logger *zap.Logger) *router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &router{
		messenger:     m,
		engine:        engine,
		profiles:      profiles,
		entitlements:  entitlements,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
		pendingGender: make(map[int64]enums.Gender),
	}
}

func (r *router) handlers() tginfra.Handlers {
	return tginfra.Handlers{
		OnCommand:  r.handleCommand,
		OnMessage:  r.handleMessage,
		OnCallback: r.handleCallback,
	}
}

func (r *router) handleCommand(ctx context.Context, update tginfra.CommandUpdate) error {
	args := strings.TrimSpace(update.Args)

	switch strings.ToLower(strings.TrimSpace(update.Command)) {
	case "start", "help":
		if _, err := r.profiles.GetOrCreate(ctx, update.UserID, update.Username); err != nil {
			return err
		}
		return r.messenger.SendText(ctx, update.ChatID, welcomeText)
	case "setgender":
		return r.setGender(ctx, update, args)
	case "setregion":
		return r.setRegion(ctx, update, args)
	case "find":
		return r.find(ctx, update.ChatID, update.UserID, update.Username, args)
	case "next":
		return r.next(ctx, update)
	case "stop":
		return r.stop(ctx, update)
	case "status":
		return r.messenger.SendText(ctx, update.ChatID, statusText(r.engine.Status(update.UserID)))
	case "pro":
		return r.pro(ctx, update)
	case "upgrade":
		return r.upgrade(ctx, update)
	case "verify":
		return r.verify(ctx, update)
	default:
		return r.messenger.SendText(ctx, update.ChatID, unknownCommandText)
	}
}

func (r *router) setGender(ctx context.Context, update tginfra.CommandUpdate, args string) error {
	if args == "" {
		return r.messenger.SendText(ctx, update.ChatID, setGenderUsage)
	}
	profile, err := r.profiles.SetGender(ctx, update.UserID, update.Username, args)
	if err != nil {
		if errors.Is(err, profilesvc.ErrInvalidGender) {
			return r.messenger.SendText(ctx, update.ChatID, invalidGenderText)
		}
		return err
	}
	return r.messenger.SendText(ctx, update.ChatID, "✅ Gender diset: "+string(profile.Gender))
}

func (r *router) setRegion(ctx context.Context, update tginfra.CommandUpdate, args string) error {
	if args == "" {
		return r.messenger.SendText(ctx, update.ChatID, setRegionUsage)
	}
	profile, err := r.profiles.SetRegion(ctx, update.UserID, update.Username, args)
	if err != nil {
		if errors.Is(err, profilesvc.ErrInvalidRegion) {
			return r.messenger.SendText(ctx, update.ChatID, invalidRegionText)
		}
		return err
	}
	return r.messenger.SendText(ctx, update.ChatID, "✅ Wilayah diset: "+profile.Region)
}

// find starts a search. PRO users without typed filters get the gender
// keyboard instead; free users always search unfiltered.
func (r *router) find(ctx context.Context, chatID, userID int64, username, args string) error {
	profile, err := r.profiles.GetOrCreate(ctx, userID, username)
	if err != nil {
		return err
	}
	if !profile.Complete() {
		return r.messenger.SendText(ctx, chatID, profileIncompleteText)
	}
	if r.engine.Status(userID) == matchmaking.StatusPaired {
		return r.messenger.SendText(ctx, chatID, alreadyInSessionText)
	}

	if !r.entitlements.IsActive(profile, r.now().UTC()) {
		if err := r.messenger.SendKeyboard(ctx, chatID, freeSearchText(r.cfg.Price), upgradeKeyboard()); err != nil {
			r.logger.Warn("send free search notice failed", zap.Error(err), zap.Int64("user_id", userID))
		}
		return r.search(ctx, chatID, matchmaking.SearchRequest{UserID: userID, Username: username})
	}

	if args == "" {
		return r.messenger.SendKeyboard(ctx, chatID, chooseGenderText, genderKeyboard())
	}
	filters, ok := parseFindArgs(args)
	if !ok {
		return r.messenger.SendText(ctx, chatID, findUsage)
	}
	return r.search(ctx, chatID, matchmaking.SearchRequest{UserID: userID, Username: username, Filters: filters})
}

// search runs the engine and answers only the failures. Success messages
// come from the engine notifier.
func (r *router) search(ctx context.Context, chatID int64, req matchmaking.SearchRequest) error {
	_, err := r.engine.Search(ctx, req)
	return r.replySearchError(ctx, chatID, err)
}

func (r *router) replySearchError(ctx context.Context, chatID int64, err error) error {
	if err == nil {
		return nil
	}
	if limited, ok := matchmaking.IsTooManySearches(err); ok {
		return r.messenger.SendText(ctx, chatID, rateLimitedText(limited.RetryAfter()))
	}
	switch {
	case errors.Is(err, matchmaking.ErrAlreadyInSession):
		return r.messenger.SendText(ctx, chatID, alreadyInSessionText)
	case errors.Is(err, matchmaking.ErrProfileIncomplete):
		return r.messenger.SendText(ctx, chatID, profileIncompleteText)
	default:
		if sendErr := r.messenger.SendText(ctx, chatID, serviceErrorText); sendErr != nil {
			r.logger.Warn("send error notice failed", zap.Error(sendErr), zap.Int64("chat_id", chatID))
		}
		return err
	}
}

func (r *router) next(ctx context.Context, update tginfra.CommandUpdate) error {
	profile, err := r.profiles.GetOrCreate(ctx, update.UserID, update.Username)
	if err != nil {
		return err
	}
	if !profile.Complete() {
		return r.messenger.SendText(ctx, update.ChatID, profileIncompleteText)
	}

	var filters matchmaking.Filters
	if args := strings.TrimSpace(update.Args); args != "" {
		parsed, ok := parseFindArgs(args)
		if !ok {
			return r.messenger.SendText(ctx, update.ChatID, findUsage)
		}
		filters = parsed
	}

	_, _, err = r.engine.Next(ctx, matchmaking.SearchRequest{
		UserID:   update.UserID,
		Username: update.Username,
		Filters:  filters,
	})
	return r.replySearchError(ctx, update.ChatID, err)
}

func (r *router) stop(ctx context.Context, update tginfra.CommandUpdate) error {
	r.clearPendingGender(update.UserID)

	result, err := r.engine.Cancel(ctx, update.UserID)
	if err != nil {
		return err
	}
	if result.Outcome == matchmaking.CancelNotSearching {
		return r.messenger.SendText(ctx, update.ChatID, notSearchingText)
	}
	return nil
}

func (r *router) pro(ctx context.Context, update tginfra.CommandUpdate) error {
	view, err := r.entitlements.Status(ctx, update.UserID, update.Username)
	if err != nil {
		return err
	}
	if view.Active {
		return r.messenger.SendText(ctx, update.ChatID, proActiveText(view.ExpiresAt, r.cfg.DurationDays))
	}
	return r.messenger.SendText(ctx, update.ChatID, proInactiveText(r.cfg.Price))
}

func (r *router) upgrade(ctx context.Context, update tginfra.CommandUpdate) error {
	order, err := r.entitlements.CreateOrder(ctx, update.UserID, update.Username)
	if err != nil {
		if errors.Is(err, entsvc.ErrGatewayUnavailable) {
			return r.messenger.SendText(ctx, update.ChatID, orderFailedText)
		}
		if sendErr := r.messenger.SendText(ctx, update.ChatID, serviceErrorText); sendErr != nil {
			r.logger.Warn("send error notice failed", zap.Error(sendErr), zap.Int64("chat_id", update.ChatID))
		}
		return err
	}

	text := orderCreatedText(order.Amount, order.PaymentURL)
	if order.PaymentURL != "" {
		if err := r.messenger.SendKeyboard(ctx, update.ChatID, text, paymentKeyboard(order.PaymentURL)); err != nil {
			return err
		}
	} else if err := r.messenger.SendText(ctx, update.ChatID, text); err != nil {
		return err
	}

	if order.QRString == "" {
		return nil
	}
	png, err := qr.PNG(order.QRString, 0)
	if err != nil {
		r.logger.Warn("render qris failed", zap.Error(err), zap.String("order_id", order.OrderID))
		return nil
	}
	return r.messenger.SendPhoto(ctx, update.ChatID, png, "QRIS "+formatRupiah(order.Amount))
}

func (r *router) verify(ctx context.Context, update tginfra.CommandUpdate) error {
	report, err := r.entitlements.Verify(ctx, update.UserID)
	if err != nil {
		return err
	}
	return r.messenger.SendText(ctx, update.ChatID, verifyReportText(report))
}

func verifyReportText(report entsvc.VerifyReport) string {
	if report.NothingPending {
		return nothingPendingText
	}

	lines := make([]string, 0, len(report.Checks)+2)
	if report.Activated {
		lines = append(lines, activatedText(report.ExpiresAt), "")
	}
	for _, check := range report.Checks {
		switch check.Outcome {
		case enums.PaymentOutcomePaid:
			lines = append(lines, fmt.Sprintf("✅ %s: lunas", check.OrderID))
		case enums.PaymentOutcomePending:
			lines = append(lines, fmt.Sprintf("⏳ %s: %s", check.OrderID, check.Status))
		default:
			lines = append(lines, fmt.Sprintf("⚠️ %s: gagal dicek, coba lagi nanti", check.OrderID))
		}
	}
	return strings.Join(lines, "\n")
}

func (r *router) handleMessage(ctx context.Context, update tginfra.MessageUpdate) error {
	partnerID, ok := r.engine.PartnerOf(update.UserID)
	if !ok {
		return r.messenger.SendText(ctx, update.ChatID, notPairedText)
	}
	if !update.Kind.Relayable() {
		return r.messenger.SendText(ctx, update.ChatID, unsupportedMediaText)
	}

	if err := r.messenger.CopyMessage(ctx, partnerID, update.ChatID, update.MessageID); err != nil {
		r.logger.Warn("relay message failed",
			zap.Error(err),
			zap.Int64("user_id", update.UserID),
			zap.Int64("partner_id", partnerID),
			zap.String("kind", string(update.Kind)),
		)
		return r.messenger.SendText(ctx, update.ChatID, relayFailedText)
	}
	if r.relay != nil {
		r.relay.ObserveRelay(update.Kind)
	}
	return nil
}

func (r *router) handleCallback(ctx context.Context, update tginfra.CallbackUpdate) error {
	data := strings.TrimSpace(update.Data)

	switch {
	case data == callbackUpgradeNow:
		if err := r.messenger.AnswerCallback(ctx, update.CallbackID, ""); err != nil {
			return err
		}
		return r.messenger.EditText(ctx, update.ChatID, update.MessageID, upgradeHintText(r.cfg.Price), nil)
	case data == callbackFindAgain:
		if err := r.messenger.AnswerCallback(ctx, update.CallbackID, ""); err != nil {
			return err
		}
		if err := r.messenger.EditText(ctx, update.ChatID, update.MessageID, searchAgainText, nil); err != nil {
			r.logger.Warn("edit callback message failed", zap.Error(err), zap.Int64("user_id", update.UserID))
		}
		return r.find(ctx, update.ChatID, update.UserID, update.Username, "")
	case strings.HasPrefix(data, callbackGenderPrefix):
		return r.chooseGender(ctx, update, strings.TrimPrefix(data, callbackGenderPrefix))
	case data == callbackRegionMore:
		if err := r.messenger.AnswerCallback(ctx, update.CallbackID, ""); err != nil {
			return err
		}
		return r.messenger.EditText(ctx, update.ChatID, update.MessageID, manualFindText, nil)
	case strings.HasPrefix(data, callbackRegionPrefix):
		return r.chooseRegion(ctx, update, strings.TrimPrefix(data, callbackRegionPrefix))
	default:
		return r.messenger.AnswerCallback(ctx, update.CallbackID, unknownActionText)
	}
}

func (r *router) chooseGender(ctx context.Context, update tginfra.CallbackUpdate, raw string) error {
	gender := enums.GenderUnset
	if raw != callbackAny {
		parsed, ok := enums.ParseGender(raw)
		if !ok {
			return r.messenger.AnswerCallback(ctx, update.CallbackID, unknownActionText)
		}
		gender = parsed
	}

	r.pendingMu.Lock()
	r.pendingGender[update.UserID] = gender
	r.pendingMu.Unlock()

	if err := r.messenger.AnswerCallback(ctx, update.CallbackID, ""); err != nil {
		return err
	}
	text := fmt.Sprintf("Gender target: %s\n\nSekarang pilih wilayah:", genderLabel(gender))
	return r.messenger.EditText(ctx, update.ChatID, update.MessageID, text, regionKeyboard())
}

func (r *router) chooseRegion(ctx context.Context, update tginfra.CallbackUpdate, raw string) error {
	region := ""
	if raw != callbackAny {
		if !rules.IsRegion(raw) {
			return r.messenger.AnswerCallback(ctx, update.CallbackID, unknownActionText)
		}
		region = raw
	}

	filters := matchmaking.Filters{
		TargetGender: r.takePendingGender(update.UserID),
		TargetRegion: region,
	}
	if err := r.messenger.AnswerCallback(ctx, update.CallbackID, ""); err != nil {
		return err
	}
	if err := r.messenger.EditText(ctx, update.ChatID, update.MessageID, targetText(filters), nil); err != nil {
		r.logger.Warn("edit callback message failed", zap.Error(err), zap.Int64("user_id", update.UserID))
	}
	return r.search(ctx, update.ChatID, matchmaking.SearchRequest{
		UserID:   update.UserID,
		Username: update.Username,
		Filters:  filters,
	})
}

func (r *router) takePendingGender(userID int64) enums.Gender {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	gender := r.pendingGender[userID]
	delete(r.pendingGender, userID)
	return gender
}

func (r *router) clearPendingGender(userID int64) {
	r.pendingMu.Lock()
	delete(r.pendingGender, userID)
	r.pendingMu.Unlock()
}

// parseFindArgs reads "<gender> [provinsi]" where gender may be "semua".
// A lone province is accepted too.
func parseFindArgs(args string) (matchmaking.Filters, bool) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return matchmaking.Filters{}, true
	}

	var filters matchmaking.Filters
	rest := fields
	if gender, ok := enums.ParseGender(fields[0]); ok {
		filters.TargetGender = gender
		rest = fields[1:]
	} else if isAnyKeyword(fields[0]) {
		rest = fields[1:]
	}

	if len(rest) == 0 {
		return filters, true
	}
	joined := strings.Join(rest, " ")
	if isAnyKeyword(joined) {
		return filters, true
	}
	region, ok := rules.NormalizeRegion(joined)
	if !ok {
		return matchmaking.Filters{}, false
	}
	filters.TargetRegion = region
	return filters, true
}

func isAnyKeyword(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "semua", "any", "-":
		return true
	default:
		return false
	}
}
