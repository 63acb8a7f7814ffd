// Package docstore реализует встраиваемое документное хранилище с интерфейсом
// в стиле MongoDB: именованные коллекции, операции FindOne/Find/InsertOne/
// UpdateOne/DeleteOne и строковые идентификаторы документов.
//
// Каждая коллекция хранится в отдельном append-журнале (одна JSON-строка на
// запись), текущее состояние материализуется в памяти при открытии. Журнал
// периодически уплотняется в фоне до минимального представления.
package docstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrDuplicateKey возвращается при вставке документа, нарушающего
// уникальное ограничение коллекции.
var ErrDuplicateKey = errors.New("duplicate key")

// Document — документ коллекции. Поле "_id" всегда хранится строкой.
type Document map[string]any

// Query — запрос к коллекции: точное совпадение полей, для "_id"
// дополнительно поддерживается оператор $in.
type Query map[string]any

// Store управляет набором коллекций в пределах одного каталога данных.
// Создаётся один раз при старте процесса и передаётся явно всем потребителям.
type Store struct {
	dir          string
	compactEvery time.Duration
	log          *slog.Logger

	mu          sync.Mutex
	collections map[string]*Collection
}

// New создает Store с каталогом данных dir. Каталог создается при отсутствии.
// compactEvery задает период фонового уплотнения журналов коллекций.
func New(dir string, compactEvery time.Duration, log *slog.Logger) (*Store, error) {
	const op = "docstore.New"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{
		dir:          dir,
		compactEvery: compactEvery,
		log:          log,
		collections:  make(map[string]*Collection),
	}, nil
}

// Collection возвращает коллекцию с именем name, создавая её при первом
// обращении. Повторные вызовы с тем же именем возвращают тот же экземпляр.
func (s *Store) Collection(name string) (*Collection, error) {
	const op = "docstore.Collection"
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c, nil
	}
	c, err := openCollection(name, filepath.Join(s.dir, name+".db"), s.log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.compactEvery > 0 {
		c.loop = true
		go c.compactLoop(s.compactEvery)
	}
	s.collections[name] = c
	return c, nil
}

// Close останавливает фоновое уплотнение и закрывает файлы всех коллекций.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, c := range s.collections {
		if err := c.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
