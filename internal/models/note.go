package models

import "time"

// Note представляет заметку пользователя к уроку.
// Заметки создаются по одной или пакетно, никогда не обновляются и не удаляются.
type Note struct {
	UID       string    `json:"_id"`
	UserID    string    `json:"userId"`
	LessonID  string    `json:"lessonId"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}
