package docstore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/interview-api/internal/lib/sl"
)

// idField — каноническое имя поля идентификатора документа.
const idField = "_id"

// deletedField помечает строку журнала как запись об удалении.
const deletedField = "$$deleted"

// InsertResult — результат операции InsertOne.
type InsertResult struct {
	Acknowledged bool
	InsertedID   string
}

// UpdateResult — результат операции UpdateOne.
type UpdateResult struct {
	Acknowledged  bool
	MatchedCount  int
	ModifiedCount int
}

// DeleteResult — результат операции DeleteOne.
type DeleteResult struct {
	Acknowledged bool
	DeletedCount int
}

// Cursor — снимок документов, отобранных операцией Find.
type Cursor struct {
	docs []Document
}

// All возвращает все отобранные документы в порядке вставки.
func (c *Cursor) All() []Document {
	return c.docs
}

// Collection — именованная коллекция документов. Текущее состояние держится
// в памяти, каждая запись дописывается в журнал коллекции.
type Collection struct {
	name string
	path string
	log  *slog.Logger

	mu      sync.RWMutex
	order   []string            // идентификаторы в порядке вставки
	docs    map[string]Document // id -> документ
	unique  map[string]struct{} // поля с уникальным ограничением
	file    *os.File            // append-дескриптор журнала
	version uint64              // растёт с каждой записью в журнал

	loop bool // запущен ли compactLoop
	stop chan struct{}
	done chan struct{}
}

// openCollection загружает состояние коллекции из журнала path и открывает
// журнал на дозапись. Отсутствующий файл означает пустую коллекцию.
func openCollection(name, path string, log *slog.Logger) (*Collection, error) {
	const op = "docstore.openCollection"

	c := &Collection{
		name:   name,
		path:   path,
		log:    log,
		docs:   make(map[string]Document),
		unique: make(map[string]struct{}),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	if err := c.load(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.file = file
	return c, nil
}

// load воспроизводит журнал: вставки и обновления замещают документ по id,
// записи об удалении убирают его.
func (c *Collection) load() error {
	file, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer func() {
		_ = file.Close()
	}()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var doc Document
		if err := json.Unmarshal(line, &doc); err != nil {
			return fmt.Errorf("corrupt journal line: %w", err)
		}
		id := canonicalID(doc[idField])
		if deleted, ok := doc[deletedField].(bool); ok && deleted {
			c.removeLocked(id)
			continue
		}
		if _, ok := c.docs[id]; !ok {
			c.order = append(c.order, id)
		}
		c.docs[id] = doc
	}
	return scanner.Err()
}

// EnsureUnique объявляет уникальное ограничение на поле field: вставка
// документа с уже существующим значением этого поля вернёт ErrDuplicateKey.
func (c *Collection) EnsureUnique(field string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unique[field] = struct{}{}
}

// InsertOne вставляет документ в коллекцию. Если у документа нет поля "_id",
// генерируется новый уникальный идентификатор. Возвращает присвоенный id.
func (c *Collection) InsertOne(ctx context.Context, doc Document) (InsertResult, error) {
	const op = "docstore.InsertOne"
	select {
	case <-ctx.Done():
		return InsertResult{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stored := maps.Clone(doc)
	if stored == nil {
		stored = Document{}
	}
	id := canonicalID(stored[idField])
	if id == "" {
		id = uuid.NewString()
	}
	stored[idField] = id

	if _, exists := c.docs[id]; exists {
		return InsertResult{}, fmt.Errorf("%s: %w: _id %q", op, ErrDuplicateKey, id)
	}
	for field := range c.unique {
		if field == idField {
			continue
		}
		value := stored[field]
		for _, existingID := range c.order {
			if equalValues(c.docs[existingID][field], value) {
				return InsertResult{}, fmt.Errorf("%s: %w: field %q", op, ErrDuplicateKey, field)
			}
		}
	}

	if err := c.appendLine(stored); err != nil {
		return InsertResult{}, fmt.Errorf("%s: %w", op, err)
	}
	c.order = append(c.order, id)
	c.docs[id] = stored
	return InsertResult{Acknowledged: true, InsertedID: id}, nil
}

// FindOne возвращает первый документ, подходящий под запрос, либо nil,
// если совпадений нет.
func (c *Collection) FindOne(ctx context.Context, query Query) (Document, error) {
	const op = "docstore.FindOne"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	q := normalizeQuery(query)

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, id := range c.order {
		if matchDocument(c.docs[id], q) {
			return maps.Clone(c.docs[id]), nil
		}
	}
	return nil, nil
}

// Find возвращает курсор по всем документам, подходящим под запрос,
// в порядке вставки.
func (c *Collection) Find(ctx context.Context, query Query) (*Cursor, error) {
	const op = "docstore.Find"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	q := normalizeQuery(query)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []Document
	for _, id := range c.order {
		if matchDocument(c.docs[id], q) {
			result = append(result, maps.Clone(c.docs[id]))
		}
	}
	return &Cursor{docs: result}, nil
}

// UpdateOne применяет частичное обновление set не более чем к одному документу,
// подходящему под filter. Отсутствие совпадений — нулевые счётчики, не ошибка.
// Upsert не поддерживается, поле "_id" не изменяется.
func (c *Collection) UpdateOne(ctx context.Context, filter Query, set Document) (UpdateResult, error) {
	const op = "docstore.UpdateOne"
	select {
	case <-ctx.Done():
		return UpdateResult{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	q := normalizeQuery(filter)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range c.order {
		if !matchDocument(c.docs[id], q) {
			continue
		}
		updated := maps.Clone(c.docs[id])
		for field, value := range set {
			if field == idField {
				continue
			}
			updated[field] = value
		}
		if err := c.appendLine(updated); err != nil {
			return UpdateResult{}, fmt.Errorf("%s: %w", op, err)
		}
		c.docs[id] = updated
		return UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
	}
	return UpdateResult{Acknowledged: true}, nil
}

// DeleteOne удаляет не более одного документа, подходящего под filter.
// Повторное удаление по тому же фильтру возвращает нулевой DeletedCount.
func (c *Collection) DeleteOne(ctx context.Context, filter Query) (DeleteResult, error) {
	const op = "docstore.DeleteOne"
	select {
	case <-ctx.Done():
		return DeleteResult{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	q := normalizeQuery(filter)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range c.order {
		if !matchDocument(c.docs[id], q) {
			continue
		}
		tombstone := Document{deletedField: true, idField: id}
		if err := c.appendLine(tombstone); err != nil {
			return DeleteResult{}, fmt.Errorf("%s: %w", op, err)
		}
		c.removeLocked(id)
		return DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
	}
	return DeleteResult{Acknowledged: true}, nil
}

// compactAttempts — число оптимистичных попыток уплотнения до отката
// к уплотнению под полной блокировкой.
const compactAttempts = 3

// Compact переписывает журнал коллекции до минимального текущего состояния.
// Снимок пишется во временный файл без блокировки; журнал подменяется под
// блокировкой и только если с момента снимка не было новых записей, иначе
// попытка повторяется. Вызывается периодически в фоне, но доступен и явно.
func (c *Collection) Compact() error {
	const op = "docstore.Compact"

	for attempt := 0; attempt < compactAttempts; attempt++ {
		c.mu.RLock()
		version := c.version
		snapshot := c.snapshotLocked()
		c.mu.RUnlock()

		tmpPath, err := c.writeSnapshot(snapshot)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		c.mu.Lock()
		if c.version == version {
			err := c.swapLocked(tmpPath)
			c.mu.Unlock()
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			return nil
		}
		c.mu.Unlock()
		_ = os.Remove(tmpPath)
	}

	// журнал меняется быстрее, чем снимается снимок: последняя попытка
	// выполняется целиком под блокировкой
	c.mu.Lock()
	defer c.mu.Unlock()
	tmpPath, err := c.writeSnapshot(c.snapshotLocked())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.swapLocked(tmpPath); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// snapshotLocked возвращает документы в порядке вставки. Вызывается под c.mu;
// сами документы после сохранения не мутируются, копировать их не нужно.
func (c *Collection) snapshotLocked() []Document {
	snapshot := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		snapshot = append(snapshot, c.docs[id])
	}
	return snapshot
}

// writeSnapshot сериализует снимок во временный файл рядом с журналом
// и возвращает его путь.
func (c *Collection) writeSnapshot(snapshot []Document) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(c.path), c.name+"-compact-*")
	if err != nil {
		return "", err
	}
	writer := bufio.NewWriter(tmp)
	for _, doc := range snapshot {
		line, err := json.Marshal(doc)
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			return "", err
		}
		if _, err := writer.Write(append(line, '\n')); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			return "", err
		}
	}
	if err := writer.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// swapLocked подменяет журнал временным файлом и переоткрывает
// append-дескриптор. Вызывается под c.mu.
func (c *Collection) swapLocked(tmpPath string) error {
	if err := os.Rename(tmpPath, c.path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	_ = c.file.Close()
	file, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	c.file = file
	return nil
}

// compactLoop периодически уплотняет журнал до остановки коллекции.
func (c *Collection) compactLoop(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.Compact(); err != nil {
				c.log.Error("compaction failed",
					slog.String("collection", c.name), sl.Err(err))
			}
		case <-c.stop:
			return
		}
	}
}

func (c *Collection) appendLine(doc Document) error {
	line, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if _, err := c.file.Write(append(line, '\n')); err != nil {
		return err
	}
	c.version++
	return nil
}

func (c *Collection) removeLocked(id string) {
	if _, ok := c.docs[id]; !ok {
		return
	}
	delete(c.docs, id)
	c.order = slices.DeleteFunc(c.order, func(existing string) bool {
		return existing == id
	})
}

// close останавливает фоновое уплотнение, дожидается его завершения
// и закрывает журнал. Без ожидания тикер мог бы переоткрыть журнал
// уже после закрытия.
func (c *Collection) close() error {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	if c.loop {
		<-c.done
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.Close()
}
