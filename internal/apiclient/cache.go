package apiclient

import (
	"context"
	"encoding/binary"
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/malo-app/malo-web/internal/config"
	"github.com/malo-app/malo-web/internal/logger"
)

// ResponseCache keeps upstream answers to public GETs in Redis so that the
// property list is not fetched again for every signup page.
type ResponseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewResponseCache returns nil when caching is disabled or Redis is absent;
// a nil cache is valid and caches nothing.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	return &ResponseCache{cfg: cfg, rdb: rdb}
}

// Key builds a stable key from method and absolute URL.
func (rc *ResponseCache) Key(method, rawURL string) string {
	sum := xxhash.Sum64String(method + " " + rawURL)
	return rc.cfg.Prefix + ":" + strconv.FormatUint(sum, 16)
}

// Get returns the cached body for key.
func (rc *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if rc == nil {
		return nil, false
	}
	bs, err := rc.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	status, _, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK {
		return nil, false
	}
	return body, true
}

// Put stores an answer.  Bodies above MaxBodyBytes are not cached.
func (rc *ResponseCache) Put(ctx context.Context, key string, status int, header http.Header, body []byte) {
	if rc == nil {
		return
	}
	if rc.cfg.MaxBodyBytes > 0 && len(body) > rc.cfg.MaxBodyBytes {
		return
	}
	payload, err := encodePayload(status, header, body)
	if err != nil {
		return
	}
	if err := rc.rdb.SetEx(ctx, key, payload, rc.cfg.TTL).Err(); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("apiclient: cache write failed")
	}
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdr := http.Header{}
	if ct := header.Get("Content-Type"); ct != "" {
		hdr.Set("Content-Type", ct)
	}
	hdrJSON, err := json.Marshal(hdr)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = http.Header{}
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}
