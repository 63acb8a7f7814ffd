// Package sl — небольшие помощники для атрибутов slog.
package sl

import "log/slog"

// Err упаковывает ошибку в атрибут с ключом "error", чтобы записи
// об ошибках во всех пакетах сервиса выглядели одинаково:
//
//	log.Error("compaction failed", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
