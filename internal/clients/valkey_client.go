package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_PROCESSED_KEY   = "moodflow:processed_utterances"
	VALKEY_TIMELINE_PREFIX = "emotion:timeline:"
	VALKEY_TTL_SECONDS     = 86400
	TIMELINE_MAX_ENTRIES   = 100

	// VALKEY_TIMELINE_CLAIMS_SUFFIX keys the set of utterances already on a timeline.
	VALKEY_TIMELINE_CLAIMS_SUFFIX = ":claimed"
)

type ValkeyOptions struct {
	Address  string
	Password string
	UseTLS   bool
}

type ValkeyClient struct {
	Client valkey.Client
	opts   ValkeyOptions
	mu     sync.Mutex
}

func NewValkeyClient(opts ValkeyOptions) (*ValkeyClient, error) {
	client, err := connectValkey(opts)
	if err != nil {
		return nil, err
	}
	return &ValkeyClient{Client: client, opts: opts}, nil
}

func connectValkey(opts ValkeyOptions) (valkey.Client, error) {
	clientOpts := valkey.ClientOption{
		InitAddress: []string{
			opts.Address,
		},
		Password:         opts.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if opts.UseTLS {
		clientOpts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey")
	return client, nil
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connectValkey(vc.opts)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed",
			slog.String("error", err.Error()))
		return
	}
	vc.Client.Close()
	vc.Client = client
}

func (vc *ValkeyClient) Close() {
	vc.current().Close()
}

func (vc *ValkeyClient) current() valkey.Client {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.Client
}

// MarkProcessed records an utterance id so redelivered requests are skipped.
func (vc *ValkeyClient) MarkProcessed(ctx context.Context, utteranceID string) error {
	build := func(c valkey.Client) []valkey.Completed {
		return []valkey.Completed{
			c.B().Sadd().Key(VALKEY_PROCESSED_KEY).Member(utteranceID).Build(),
			c.B().Expire().Key(VALKEY_PROCESSED_KEY).Seconds(VALKEY_TTL_SECONDS).Build(),
		}
	}

	for _, res := range vc.DoMultiWithRetry(ctx, build, MAX_RETRIES) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("failed to mark utterance processed: %w", err)
		}
	}

	slog.Debug("[ValkeyClient] Utterance marked processed",
		slog.String("utterance_id", utteranceID))
	return nil
}

func (vc *ValkeyClient) IsProcessed(ctx context.Context, utteranceID string) bool {
	res := vc.DoWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Sismember().Key(VALKEY_PROCESSED_KEY).Member(utteranceID).Build()
	}, MAX_RETRIES)

	ok, err := res.AsBool()
	if err != nil {
		return false
	}
	return ok
}

// ClaimTimelineEntry records utteranceID in the session's claimed set and
// reports whether it was new.
func (vc *ValkeyClient) ClaimTimelineEntry(ctx context.Context, sessionID string, utteranceID string) (bool, error) {
	key := VALKEY_TIMELINE_PREFIX + sessionID + VALKEY_TIMELINE_CLAIMS_SUFFIX
	build := func(c valkey.Client) []valkey.Completed {
		return []valkey.Completed{
			c.B().Sadd().Key(key).Member(utteranceID).Build(),
			c.B().Expire().Key(key).Seconds(VALKEY_TTL_SECONDS).Build(),
		}
	}

	results := vc.DoMultiWithRetry(ctx, build, MAX_RETRIES)
	added, err := results[0].AsInt64()
	if err != nil {
		return false, fmt.Errorf("failed to claim timeline entry: %w", err)
	}
	return added == 1, nil
}

// AppendTimeline pushes an encoded result onto the session's timeline,
// keeping the newest TIMELINE_MAX_ENTRIES.
func (vc *ValkeyClient) AppendTimeline(ctx context.Context, sessionID string, entry string) error {
	key := VALKEY_TIMELINE_PREFIX + sessionID
	build := func(c valkey.Client) []valkey.Completed {
		return []valkey.Completed{
			c.B().Rpush().Key(key).Element(entry).Build(),
			c.B().Ltrim().Key(key).Start(-TIMELINE_MAX_ENTRIES).Stop(-1).Build(),
			c.B().Expire().Key(key).Seconds(VALKEY_TTL_SECONDS).Build(),
		}
	}

	for _, res := range vc.DoMultiWithRetry(ctx, build, MAX_RETRIES) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("failed to append timeline entry: %w", err)
		}
	}
	return nil
}

func (vc *ValkeyClient) Timeline(ctx context.Context, sessionID string) ([]string, error) {
	key := VALKEY_TIMELINE_PREFIX + sessionID
	entries, err := vc.DoWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Lrange().Key(key).Start(0).Stop(-1).Build()
	}, MAX_RETRIES).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to read timeline: %w", err)
	}
	return entries, nil
}

// DoMultiWithRetry rebuilds the commands on every attempt since completed
// commands are recycled once executed.
func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, build func(valkey.Client) []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		client := vc.current()
		results = client.DoMulti(ctx, build(client)...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				if isConnectionError(r.Error()) {
					vc.recreateClient()
				}
				break
			}
		}
		if !hasErr {
			break
		}
		time.Sleep(RETRY_BACKOFF)
	}

	return results
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, build func(valkey.Client) valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		client := vc.current()
		result = client.Do(ctx, build(client))
		if result.Error() == nil {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))
		if isConnectionError(result.Error()) {
			vc.recreateClient()
		}

		time.Sleep(RETRY_BACKOFF)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
