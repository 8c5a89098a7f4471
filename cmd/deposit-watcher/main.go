package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/handle-registry/backend/internal/config"
	"github.com/handle-registry/backend/internal/db"
	"github.com/handle-registry/backend/internal/events"
	"github.com/handle-registry/backend/internal/models"
	"github.com/handle-registry/backend/internal/repositories"
	apiton "github.com/handle-registry/backend/internal/ton"
	"github.com/redis/go-redis/v9"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"
	"go.uber.org/zap"
)

// The deposit watcher follows the registry treasury wallet on chain and
// records every memo-tagged incoming transfer as a spendable deposit.
// Fee-gated API calls later consume those deposits by memo.

const (
	cursorLTKey   = "deposit-watcher:cursor:lt"
	cursorHashKey = "deposit-watcher:cursor:hash"
	seenTxPrefix  = "deposit-watcher:tx:"
	seenTxTTL     = 7 * 24 * time.Hour
	pollEvery     = 5 * time.Second
	txPageSize    = 100
	textCommentOp = 0x00000000
)

type watcher struct {
	api       ton.APIClientWrapped
	treasury  *address.Address
	store     repositories.RegistryStore
	publisher events.Publisher
	rdb       *redis.Client
	log       *zap.Logger
}

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TreasuryWalletAddress == "" {
		log.Fatal("TREASURY_WALLET_ADDRESS is required")
	}

	treasury, err := address.ParseAddr(cfg.TreasuryWalletAddress)
	if err != nil {
		log.Fatal("invalid TREASURY_WALLET_ADDRESS", zap.String("addr", cfg.TreasuryWalletAddress), zap.Error(err))
	}

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	tonAPI, err := apiton.Connect(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to connect to TON network", zap.Error(err))
	}

	w := &watcher{
		api:       tonAPI,
		treasury:  treasury,
		store:     repositories.NewPostgres(pool),
		publisher: events.NewRedisPublisher(rdb, log),
		rdb:       rdb,
		log:       log,
	}

	log.Info("deposit watcher started",
		zap.String("treasury", treasury.String()),
		zap.String("network", cfg.TONNetwork),
	)

	w.initCursor(ctx)
	w.run(ctx, cancel)
}

func (w *watcher) run(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			if err := w.poll(ctx); err != nil {
				w.log.Error("poll cycle failed", zap.Error(err))
			}
		case <-sigCh:
			w.log.Info("shutting down deposit watcher")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

// initCursor anchors the cursor at the treasury account's current LastTxLT
// on first start so only transfers arriving after startup become deposits.
// Subsequent starts resume from the saved position.
func (w *watcher) initCursor(ctx context.Context) {
	if existing, _ := w.rdb.Get(ctx, cursorLTKey).Result(); existing != "" {
		w.log.Info("resuming from saved cursor", zap.String("lt", existing))
		return
	}

	block, err := w.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		w.log.Warn("cursor init: master block unavailable", zap.Error(err))
		w.rdb.Set(ctx, cursorLTKey, "0", 0)
		return
	}

	account, err := w.api.GetAccount(ctx, block, w.treasury)
	if err != nil {
		w.log.Warn("cursor init: account unavailable", zap.Error(err))
		w.rdb.Set(ctx, cursorLTKey, "0", 0)
		return
	}

	if account == nil || !account.IsActive || account.LastTxLT == 0 {
		w.log.Info("treasury wallet not active yet, starting from LT=0")
		w.rdb.Set(ctx, cursorLTKey, "0", 0)
		return
	}

	w.saveCursor(ctx, account.LastTxLT, account.LastTxHash)
	w.log.Info("cursor anchored at current account state",
		zap.Uint64("lt", account.LastTxLT),
		zap.String("hash", hex.EncodeToString(account.LastTxHash)),
	)
}

func (w *watcher) cursorLT(ctx context.Context) uint64 {
	val, err := w.rdb.Get(ctx, cursorLTKey).Result()
	if err != nil || val == "" {
		return 0
	}
	lt, _ := strconv.ParseUint(val, 10, 64)
	return lt
}

func (w *watcher) saveCursor(ctx context.Context, lt uint64, hash []byte) {
	w.rdb.Set(ctx, cursorLTKey, strconv.FormatUint(lt, 10), 0)
	w.rdb.Set(ctx, cursorHashKey, hex.EncodeToString(hash), 0)
}

// poll runs one cycle: read the account head, collect transactions past the
// cursor, record the memo-tagged incoming ones, advance the cursor.
func (w *watcher) poll(ctx context.Context) error {
	since := w.cursorLT(ctx)

	block, err := w.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		return fmt.Errorf("get master block: %w", err)
	}

	account, err := w.api.GetAccount(ctx, block, w.treasury)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}
	if account == nil || !account.IsActive || account.LastTxLT <= since {
		return nil
	}

	txs, err := w.transactionsSince(ctx, account, since)
	if err != nil {
		return fmt.Errorf("fetch transactions: %w", err)
	}

	if len(txs) > 0 {
		w.log.Info("found new transactions", zap.Int("count", len(txs)))
		for _, tx := range txs {
			w.recordIncoming(ctx, tx)
		}
	}

	w.saveCursor(ctx, account.LastTxLT, account.LastTxHash)
	return nil
}

// transactionsSince pages backwards from the account head until it crosses
// the cursor, then returns everything newer in chronological order.
func (w *watcher) transactionsSince(ctx context.Context, account *tlb.Account, since uint64) ([]*tlb.Transaction, error) {
	var collected []*tlb.Transaction

	lt := account.LastTxLT
	hash := account.LastTxHash

	for {
		page, err := w.api.ListTransactions(ctx, w.treasury, uint32(txPageSize), lt, hash)
		if err != nil {
			return nil, fmt.Errorf("list transactions (lt=%d): %w", lt, err)
		}
		if len(page) == 0 {
			break
		}

		crossedCursor := false
		for _, tx := range page {
			if tx.LT <= since {
				crossedCursor = true
				continue
			}
			collected = append(collected, tx)
		}

		if crossedCursor || len(page) < txPageSize {
			break
		}

		oldest := page[0]
		if oldest.PrevTxLT == 0 {
			break
		}
		lt = oldest.PrevTxLT
		hash = oldest.PrevTxHash
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].LT < collected[j].LT
	})
	return collected, nil
}

// recordIncoming stores one incoming transfer as a deposit keyed by its
// memo. Transfers without a memo cannot be matched to a fee payment and are
// skipped; bounced and zero-value messages are ignored.
func (w *watcher) recordIncoming(ctx context.Context, tx *tlb.Transaction) {
	if tx.IO.In == nil {
		return
	}
	inMsg, ok := tx.IO.In.Msg.(*tlb.InternalMessage)
	if !ok || inMsg == nil || inMsg.Bounced {
		return
	}
	if inMsg.Amount.Nano().Sign() <= 0 {
		return
	}

	memo := extractComment(inMsg)
	if memo == "" {
		w.log.Debug("transfer without memo, skipping",
			zap.Uint64("lt", tx.LT),
			zap.String("from", inMsg.SrcAddr.String()),
		)
		return
	}

	seenKey := fmt.Sprintf("%s%d", seenTxPrefix, tx.LT)
	if w.rdb.Exists(ctx, seenKey).Val() > 0 {
		return
	}

	deposit := &models.Deposit{
		Memo:       memo,
		Payer:      inMsg.SrcAddr.StringRaw(),
		AmountNano: inMsg.Amount.Nano().Uint64(),
		TxLT:       tx.LT,
		ReceivedAt: time.Unix(int64(tx.Now), 0).UTC(),
	}
	if err := w.store.SaveDeposit(ctx, deposit); err != nil {
		w.log.Error("failed to save deposit", zap.String("memo", memo), zap.Error(err))
		return
	}

	_ = w.publisher.Publish(ctx, events.StreamRegistry, events.Event{
		Type: events.EventPaymentReceived,
		Payload: map[string]any{
			"memo":        deposit.Memo,
			"payer":       deposit.Payer,
			"amount_nano": deposit.AmountNano,
			"tx_lt":       deposit.TxLT,
		},
	})

	w.rdb.Set(ctx, seenKey, "deposit:"+memo, seenTxTTL)

	w.log.Info("deposit recorded",
		zap.Uint64("tx_lt", deposit.TxLT),
		zap.String("memo", deposit.Memo),
		zap.String("payer", deposit.Payer),
		zap.Uint64("amount_nano", deposit.AmountNano),
	)
}

// extractComment parses a plain text comment from a message body: opcode
// 0x00000000 followed by UTF-8 text.
func extractComment(inMsg *tlb.InternalMessage) string {
	body := inMsg.Body
	if body == nil {
		return ""
	}

	slice := body.BeginParse()
	if slice.BitsLeft() < 32 {
		return ""
	}

	op, err := slice.LoadUInt(32)
	if err != nil || op != textCommentOp {
		return ""
	}

	remaining := slice.BitsLeft()
	if remaining < 8 {
		return ""
	}

	data, err := slice.LoadSlice(remaining)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}
