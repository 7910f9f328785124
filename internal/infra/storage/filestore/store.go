package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	bookingsFile     = "bookings.json"
	availabilityFile = "availability.json"
	servicesFile     = "services.json"
	ordersFile       = "orders.json"
)

var ErrPersist = errors.New("filestore: failed to persist collection")

// Store файловое хранилище: коллекции в памяти, каждая запись сразу сбрасывается на диск
// mu защищает данные, writeMu сериализует транзакции (одна пишущая транзакция за раз)
type Store struct {
	mu      sync.RWMutex
	writeMu sync.Mutex

	bookings *collection[bookingRecord]
	windows  *collection[windowRecord]
	services *collection[serviceRecord]
	orders   *collection[orderRecord]

	now func() time.Time
}

// Open загружает коллекции из dir, отсутствующие файлы считаются пустыми
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create data dir: %w", err)
	}

	s := &Store{now: time.Now}
	var err error

	if s.bookings, err = loadCollection(filepath.Join(dir, bookingsFile),
		func(r bookingRecord) string { return r.ID },
		func(a, b bookingRecord) bool { return a.StartTime.Before(b.StartTime) },
	); err != nil {
		return nil, err
	}

	if s.windows, err = loadCollection(filepath.Join(dir, availabilityFile),
		func(r windowRecord) string { return r.ID },
		func(a, b windowRecord) bool {
			if a.DayOfWeek != b.DayOfWeek {
				return a.DayOfWeek < b.DayOfWeek
			}
			return a.StartTime.IsBefore(b.StartTime)
		},
	); err != nil {
		return nil, err
	}

	if s.services, err = loadCollection(filepath.Join(dir, servicesFile),
		func(r serviceRecord) string { return r.ID },
		func(a, b serviceRecord) bool { return a.Title < b.Title },
	); err != nil {
		return nil, err
	}

	if s.orders, err = loadCollection(filepath.Join(dir, ordersFile),
		func(r orderRecord) string { return r.ID },
		func(a, b orderRecord) bool { return a.CreatedAt.After(b.CreatedAt) },
	); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{s: s}
}

func (s *Store) Availability() *AvailabilityRepository {
	return &AvailabilityRepository{s: s}
}

func (s *Store) Services() *ServiceRepository {
	return &ServiceRepository{s: s}
}

func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{s: s}
}

func (s *Store) TxManager() *TxManager {
	return &TxManager{s: s}
}

type writerKey struct{}

// TxManager для файлового хранилища
// Пишущие транзакции выполняются строго по одной; чтения идут параллельно.
// Отката нет: каждая операция fn пишет не более одной записи и делает это последней
type TxManager struct {
	s *Store
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(writerKey{}) != nil {
		return fn(ctx)
	}

	m.s.writeMu.Lock()
	defer m.s.writeMu.Unlock()

	return fn(context.WithValue(ctx, writerKey{}, true))
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// collection коллекция записей с ключом id, хранится как JSON-массив
type collection[R any] struct {
	path  string
	items map[string]R
	id    func(R) string
	less  func(a, b R) bool
}

func loadCollection[R any](path string, id func(R) string, less func(a, b R) bool) (*collection[R], error) {
	c := &collection[R]{path: path, items: make(map[string]R), id: id, less: less}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: read %s: %w", path, err)
	}

	if len(data) == 0 {
		return c, nil
	}

	var records []R
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("filestore: decode %s: %w", path, err)
	}
	for _, r := range records {
		c.items[id(r)] = r
	}

	return c, nil
}

// sorted записи коллекции в порядке less
func (c *collection[R]) sorted() []R {
	out := make([]R, 0, len(c.items))
	for _, r := range c.items {
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return c.less(out[i], out[j]) })
	return out
}

// put вставляет или заменяет запись и сбрасывает коллекцию на диск
// При ошибке записи состояние в памяти откатывается
func (c *collection[R]) put(r R) error {
	key := c.id(r)
	prev, existed := c.items[key]

	c.items[key] = r
	if err := c.flush(); err != nil {
		if existed {
			c.items[key] = prev
		} else {
			delete(c.items, key)
		}
		return err
	}
	return nil
}

// remove удаляет запись, false если её не было
func (c *collection[R]) remove(key string) (bool, error) {
	prev, existed := c.items[key]
	if !existed {
		return false, nil
	}

	delete(c.items, key)
	if err := c.flush(); err != nil {
		c.items[key] = prev
		return true, err
	}
	return true, nil
}

// flush атомарно перезаписывает файл: временный файл + rename
func (c *collection[R]) flush() error {
	data, err := json.MarshalIndent(c.sorted(), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersist, c.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrPersist, c.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrPersist, c.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrPersist, c.path, err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrPersist, c.path, err)
	}
	return nil
}
