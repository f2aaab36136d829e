package notify

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	logx "remindd/pkg/logx"
)

type TelegramConfig struct {
	Enabled    bool
	Token      string
	ChatID     int64
	RatePerSec int
}

// TelegramAnnouncer mirrors countdown lines to a telegram chat. Sends go
// through a small buffered queue and a rate limiter; anything over budget
// is dropped so the countdown clock is never stalled by the network.
type TelegramAnnouncer struct {
	bot *tele.Bot
	to  tele.ChatID
	lim *rate.Limiter
	log logx.Logger

	queue  chan string
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTelegramAnnouncer(cfg TelegramConfig, log logx.Logger) (*TelegramAnnouncer, error) {
	bot, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, err
	}

	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &TelegramAnnouncer{
		bot:    bot,
		to:     tele.ChatID(cfg.ChatID),
		lim:    rate.NewLimiter(rate.Limit(rps), rps),
		log:    log,
		queue:  make(chan string, 256),
		cancel: cancel,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.worker(ctx)
	}()
	return a, nil
}

func (a *TelegramAnnouncer) Announce(msg string) {
	if !a.lim.Allow() {
		return
	}
	// Never block a countdown.
	select {
	case a.queue <- msg:
	default:
		// drop
	}
}

func (a *TelegramAnnouncer) Close() {
	a.cancel()
	a.wg.Wait()
}

func (a *TelegramAnnouncer) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.queue:
			if _, err := a.bot.Send(a.to, msg); err != nil {
				a.log.Warn("telegram announce failed", logx.Int64("chat_id", int64(a.to)), logx.Err(err))
			}
		}
	}
}
