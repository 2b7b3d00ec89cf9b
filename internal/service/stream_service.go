package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/streamlog/internal/db"
	"github.com/streamlog/internal/storage"
)

const streamIDLength = 12

// StreamService 持有直播记录集合，每次修改都整体覆盖写回存储键。
// 同一进程内的写入由互斥锁串行化；多个进程同时写入时后写者覆盖先写者。
type StreamService struct {
	mu       sync.Mutex
	backend  storage.Backend
	key      string
	now      func() time.Time
	newID    func() string
	revision atomic.Uint64
	logger   zerolog.Logger
}

// StreamOption 调整 StreamService 的可替换依赖
type StreamOption func(*StreamService)

// WithClock 替换“今天”的来源，种子数据依赖它
func WithClock(now func() time.Time) StreamOption {
	return func(s *StreamService) {
		s.now = now
	}
}

// WithIDGenerator 替换 ID 生成器
func WithIDGenerator(gen func() string) StreamOption {
	return func(s *StreamService) {
		s.newID = gen
	}
}

// WithStorageKey 使用非默认的存储键
func WithStorageKey(key string) StreamOption {
	return func(s *StreamService) {
		s.key = key
	}
}

// NewStreamService 构造 StreamService
func NewStreamService(backend storage.Backend, logger zerolog.Logger, opts ...StreamOption) *StreamService {
	s := &StreamService{
		backend: backend,
		key:     db.StreamsStorageKey,
		now:     time.Now,
		newID:   newStreamID,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newStreamID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:streamIDLength]
}

// Today 返回服务时钟下的本地日历日期
func (s *StreamService) Today() db.Date {
	return db.DateOf(s.now())
}

// Revision 在每次成功修改后递增，可作为缓存键的一部分
func (s *StreamService) Revision() uint64 {
	return s.revision.Load()
}

// EnsureInitialized 在存储键从未写入时写入两条示例数据。
// 只要键存在（即使集合已被删空）就不会再次写入。
func (s *StreamService) EnsureInitialized(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.backend.Get(ctx, s.key); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrKeyNotFound) {
		return storageError("check stream storage", err)
	}

	today := s.Today()
	seed := []db.Stream{
		{ID: s.uniqueID(nil), Date: today, Platform: db.PlatformTwitch, Viewers: 45, Duration: 3.5, Note: "Great raid!"},
		{Date: today.AddDays(-2), Platform: db.PlatformYouTube, Viewers: 120, Duration: 2, Note: "Tech issues at start."},
	}
	seed[1].ID = s.uniqueID(seed[:1])

	if err := s.save(ctx, seed); err != nil {
		return err
	}

	s.logger.Info().Int("count", len(seed)).Msg("seeded stream storage")
	return nil
}

// List 返回完整集合，按插入顺序
func (s *StreamService) List(ctx context.Context) ([]db.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// ListByDate 返回指定日期的记录
func (s *StreamService) ListByDate(ctx context.Context, date db.Date) ([]db.Stream, error) {
	streams, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterByDate(streams, date), nil
}

// Get 根据 ID 获取记录
func (s *StreamService) Get(ctx context.Context, id string) (*db.Stream, error) {
	streams, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(streams, func(st db.Stream) bool { return st.ID == id })
	if idx < 0 {
		return nil, ErrStreamNotFound
	}
	return &streams[idx], nil
}

// Upsert 无 ID 时分配新 ID 并追加；ID 命中时原位替换；ID 未命中返回 ErrStreamNotFound。
func (s *StreamService) Upsert(ctx context.Context, stream db.Stream) (*db.Stream, error) {
	stream.ID = strings.TrimSpace(stream.ID)
	stream.Note = strings.TrimSpace(stream.Note)
	if err := validateStream(stream); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	streams, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if stream.ID == "" {
		stream.ID = s.uniqueID(streams)
		streams = append(streams, stream)
	} else {
		idx := slices.IndexFunc(streams, func(st db.Stream) bool { return st.ID == stream.ID })
		if idx < 0 {
			return nil, ErrStreamNotFound
		}
		streams[idx] = stream
	}

	if err := s.save(ctx, streams); err != nil {
		return nil, err
	}

	return &stream, nil
}

// Delete 删除指定记录，记录不存在时不报错也不写存储
func (s *StreamService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	streams, err := s.load(ctx)
	if err != nil {
		return err
	}

	filtered := slices.DeleteFunc(slices.Clone(streams), func(st db.Stream) bool { return st.ID == id })
	if len(filtered) == len(streams) {
		return nil
	}

	return s.save(ctx, filtered)
}

func (s *StreamService) uniqueID(existing []db.Stream) string {
	for {
		id := s.newID()
		if id != "" && !slices.ContainsFunc(existing, func(st db.Stream) bool { return st.ID == id }) {
			return id
		}
	}
}

func (s *StreamService) load(ctx context.Context) ([]db.Stream, error) {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []db.Stream{}, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("key", s.key).Msg("load streams")
		return nil, storageError("load streams", err)
	}

	streams := []db.Stream{}
	if err := json.Unmarshal(data, &streams); err != nil {
		s.logger.Error().Err(err).Str("key", s.key).Msg("decode streams")
		return nil, storageError("decode streams", err)
	}
	return streams, nil
}

func (s *StreamService) save(ctx context.Context, streams []db.Stream) error {
	data, err := json.Marshal(streams)
	if err != nil {
		return storageError("encode streams", err)
	}

	if err := s.backend.Set(ctx, s.key, data); err != nil {
		s.logger.Error().Err(err).Str("key", s.key).Msg("save streams")
		return storageError("save streams", err)
	}

	s.revision.Add(1)
	return nil
}

func validateStream(stream db.Stream) error {
	if !stream.Date.Valid() {
		return invalid("date", fmt.Sprintf("invalid calendar date %s", stream.Date))
	}
	if !stream.Platform.Valid() {
		return invalid("platform", fmt.Sprintf("unsupported platform %q", stream.Platform))
	}
	if math.IsNaN(stream.Viewers) || math.IsInf(stream.Viewers, 0) || stream.Viewers < 0 {
		return invalid("viewers", "viewers must be a non-negative number")
	}
	if math.IsNaN(stream.Duration) || math.IsInf(stream.Duration, 0) || stream.Duration <= 0 {
		return invalid("duration", "duration must be greater than zero")
	}
	return nil
}

func filterByDate(streams []db.Stream, date db.Date) []db.Stream {
	result := make([]db.Stream, 0)
	for _, st := range streams {
		if st.Date == date {
			result = append(result, st)
		}
	}
	return result
}
