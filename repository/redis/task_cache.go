package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// cachedTask is the JSON shape stored under task:<id>.
type cachedTask struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	Tags        []string     `json:"tags"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Checklist   []cachedItem `json:"checklist"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type cachedItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// fillScript writes an entry unless a fence newer than the entry exists.
// KEYS[1] entry, KEYS[2] fence; ARGV[1] payload, ARGV[2] updated_at ms, ARGV[3] ttl ms.
var fillScript = redislib.NewScript(`
local fence = redis.call('GET', KEYS[2])
if fence and tonumber(fence) > tonumber(ARGV[2]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// fenceScript raises the fence to at least ARGV[1] and drops the entry.
// KEYS[1] entry, KEYS[2] fence; ARGV[1] version ms, ARGV[2] ttl ms.
var fenceScript = redislib.NewScript(`
local version = ARGV[1]
local fence = redis.call('GET', KEYS[2])
if fence and tonumber(fence) > tonumber(version) then
	version = fence
end
redis.call('SET', KEYS[2], version, 'PX', ARGV[2])
redis.call('DEL', KEYS[1])
return 1
`)

// deletedVersion fences a removed task above any timestamp a stale load can carry.
const deletedVersion int64 = 1<<53 - 1

const defaultLoadTimeout = 5 * time.Second

type cachedTaskRepository struct {
	next        repository.TaskRepository
	client      *redislib.Client
	prefix      string
	ttl         time.Duration
	loadTimeout time.Duration
	group       singleflight.Group
	logger      *zap.Logger
}

// NewCachedTaskRepository wraps next with a read-through Redis cache for
// single-task lookups. Cache failures are logged and the call falls through
// to next.
//
// Writes leave a fence carrying the task version next to the entry, and a
// fill only lands when it is not older than the fence, so a load that raced
// an update or delete cannot put the previous version back.
func NewCachedTaskRepository(next repository.TaskRepository, client *redislib.Client, ttl time.Duration, logger *zap.Logger) repository.TaskRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedTaskRepository{
		next:        next,
		client:      client,
		prefix:      "task:",
		ttl:         ttl,
		loadTimeout: defaultLoadTimeout,
		logger:      logger,
	}
}

func (r *cachedTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if task, ok := r.lookup(ctx, id); ok {
		return task, nil
	}

	// The shared load is detached from any single caller; each caller
	// still stops waiting when its own context ends.
	ch := r.group.DoChan(id, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
		defer cancel()

		task, err := r.next.GetByID(loadCtx, id)
		if err != nil {
			return nil, err
		}
		r.fill(loadCtx, task)
		return task, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// Callers sharing a flight each get their own copy.
		return cloneTask(res.Val.(*domain.Task)), nil
	}
}

func (r *cachedTaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	return r.next.List(ctx)
}

func (r *cachedTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.next.Create(ctx, task)
}

func (r *cachedTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task != nil {
		defer r.fence(ctx, task.ID, task.UpdatedAt.UnixMilli())
	}
	return r.next.Update(ctx, task)
}

func (r *cachedTaskRepository) Delete(ctx context.Context, id string) error {
	defer r.fence(ctx, id, deletedVersion)
	return r.next.Delete(ctx, id)
}

// Ping reports the health of the wrapped store; Redis health is tracked separately.
func (r *cachedTaskRepository) Ping(ctx context.Context) error {
	if pinger, ok := r.next.(repository.Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

func (r *cachedTaskRepository) lookup(ctx context.Context, id string) (*domain.Task, bool) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redislib.Nil) {
			r.logger.Warn("task cache get failed", zap.String("task_id", id), zap.Error(err))
		}
		return nil, false
	}

	task, err := decodeTask(raw)
	if err != nil {
		r.logger.Warn("discarding unreadable cache entry", zap.String("task_id", id), zap.Error(err))
		r.evict(ctx, id)
		return nil, false
	}
	return task, true
}

func (r *cachedTaskRepository) fill(ctx context.Context, task *domain.Task) {
	payload, err := encodeTask(task)
	if err != nil {
		r.logger.Warn("task cache encode failed", zap.String("task_id", task.ID), zap.Error(err))
		return
	}
	keys := []string{r.key(task.ID), r.fenceKey(task.ID)}
	stored, err := fillScript.Run(ctx, r.client, keys, payload, task.UpdatedAt.UnixMilli(), r.ttl.Milliseconds()).Int()
	if err != nil {
		r.logger.Warn("task cache set failed", zap.String("task_id", task.ID), zap.Error(err))
		return
	}
	if stored == 0 {
		r.logger.Debug("skipped stale task cache fill", zap.String("task_id", task.ID))
	}
}

// fence records version as the oldest value the cache may hold for id and
// drops the current entry. The fence outlives any load started before it.
func (r *cachedTaskRepository) fence(ctx context.Context, id string, version int64) {
	ttl := r.ttl
	if ttl < r.loadTimeout {
		ttl = r.loadTimeout
	}
	keys := []string{r.key(id), r.fenceKey(id)}
	if err := fenceScript.Run(ctx, r.client, keys, version, ttl.Milliseconds()).Err(); err != nil {
		r.logger.Warn("task cache invalidation failed", zap.String("task_id", id), zap.Error(err))
	}
}

func (r *cachedTaskRepository) evict(ctx context.Context, id string) {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		r.logger.Warn("task cache eviction failed", zap.String("task_id", id), zap.Error(err))
	}
}

func (r *cachedTaskRepository) key(id string) string {
	return fmt.Sprintf("%s%s", r.prefix, id)
}

func (r *cachedTaskRepository) fenceKey(id string) string {
	return fmt.Sprintf("%s%s:fence", r.prefix, id)
}

func encodeTask(task *domain.Task) ([]byte, error) {
	entry := cachedTask{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		Tags:        task.Tags,
		DueDate:     task.DueDate,
		Checklist:   make([]cachedItem, 0, len(task.Checklist)),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	for _, item := range task.Checklist {
		entry.Checklist = append(entry.Checklist, cachedItem(item))
	}
	return json.Marshal(entry)
}

func decodeTask(raw []byte) (*domain.Task, error) {
	var entry cachedTask
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	status, err := domain.ParseStatus(entry.Status)
	if err != nil {
		return nil, err
	}
	priority, err := domain.ParsePriority(entry.Priority)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:          entry.ID,
		Title:       entry.Title,
		Description: entry.Description,
		Status:      status,
		Priority:    priority,
		Tags:        append([]string{}, entry.Tags...),
		Checklist:   make([]domain.ChecklistItem, 0, len(entry.Checklist)),
		CreatedAt:   entry.CreatedAt.UTC(),
		UpdatedAt:   entry.UpdatedAt.UTC(),
	}
	if entry.DueDate != nil {
		due := entry.DueDate.UTC()
		task.DueDate = &due
	}
	for _, item := range entry.Checklist {
		task.Checklist = append(task.Checklist, domain.ChecklistItem(item))
	}
	return task, nil
}

func cloneTask(task *domain.Task) *domain.Task {
	out := *task
	out.Tags = append([]string{}, task.Tags...)
	out.Checklist = append([]domain.ChecklistItem{}, task.Checklist...)
	if task.DueDate != nil {
		due := *task.DueDate
		out.DueDate = &due
	}
	return &out
}
