package util

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"

	"github.com/jmoiron/sqlx"
)

// RoomIDLength : длина идентификатора комнаты в символах.
// 21 hex-символ покрывает 84 бита случайности, коллизии пренебрежимы.
const RoomIDLength = 21

// generateRandomToken : генерирует случайный токен длиной length символов
func generateRandomToken(length int) (string, error) {
	byteLength := (length + 1) / 2 // т.к. hex кодирует 1 байт = 2 символа
	bytes := make([]byte, byteLength)

	_, err := rand.Read(bytes)
	if err != nil {
		return "", LogError("[util] ошибка генерации токена", err)
	}

	return hex.EncodeToString(bytes)[:length], nil
}

// GenerateUniqueRoomID : выделяет id новой комнаты. Проверка по таблице rooms
// на случай коллизии; повтор до успеха.
func GenerateUniqueRoomID(ctx context.Context, exec sqlx.ExtContext) (string, error) {
	for {
		token, err := generateRandomToken(RoomIDLength)
		if err != nil {
			return "", err
		}

		var exists bool
		err = sqlx.GetContext(ctx, exec, &exists, `
			SELECT EXISTS (SELECT 1 FROM rooms WHERE uuid = $1)
		`, token)

		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", LogError("[util] ошибка проверки id комнаты", err)
		}

		if exists == false {
			return token, nil
		}
	}
}
