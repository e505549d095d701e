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

// ValkeyClient is a small cache wrapper used for logo-lookup results.
type ValkeyClient struct {
	client valkey.Client
	opts   valkey.ClientOption
	mu     sync.Mutex
}

func NewValkeyClient(addr, password string, useTLS bool) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{addr},
		Password:         password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if useTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey")
	return &ValkeyClient{client: client, opts: opts}, nil
}

func (vc *ValkeyClient) Close() {
	vc.client.Close()
}

// Get returns the cached value and whether the key existed.
func (vc *ValkeyClient) Get(ctx context.Context, key string) (string, bool) {
	res := vc.doWithRetry(ctx, vc.client.B().Get().Key(key).Build(), 3)
	if err := res.Error(); err != nil {
		if isConnectionError(err) {
			vc.recreateClient()
		}
		return "", false
	}
	val, err := res.ToString()
	if err != nil {
		return "", false
	}
	return val, true
}

func (vc *ValkeyClient) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	res := vc.doWithRetry(ctx, vc.client.B().Set().Key(key).Value(value).
		Ex(ttl).Build(), 3)
	if err := res.Error(); err != nil {
		if isConnectionError(err) {
			vc.recreateClient()
		}
		return err
	}
	return nil
}

func (vc *ValkeyClient) doWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.client.Do(ctx, completed)
		if result.Error() == nil {
			break
		}
		if valkey.IsValkeyNil(result.Error()) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		time.Sleep(250 * time.Millisecond)
	}
	return result
}

func (vc *ValkeyClient) recreateClient() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[ValkeyClient] Recreate failed and was recovered from panic",
				slog.Any("panic", r))
		}
	}()

	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	vc.client.Close()

	client, err := valkey.NewClient(vc.opts)
	if err != nil {
		panic(fmt.Errorf("[ValkeyClient] failed to recreate client: %w", err))
	}
	vc.client = client
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
