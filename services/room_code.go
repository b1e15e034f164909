package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/yeremiapane/photobooth-app/models"
	"gorm.io/gorm"
)

const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 6
	roomCodeAttempts = 10
)

var ErrRoomCodeExhausted = errors.New("could not generate a unique room code")

// GenerateRoomCode membuat kode 6 karakter tanpa huruf/angka yang mirip (0/O, 1/I).
func GenerateRoomCode() (string, error) {
	code := make([]byte, roomCodeLength)
	max := big.NewInt(int64(len(roomCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = roomCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// UniqueRoomCode mencoba beberapa kali sampai mendapat kode yang belum dipakai.
func UniqueRoomCode(ctx context.Context, db *gorm.DB) (string, error) {
	for i := 0; i < roomCodeAttempts; i++ {
		code, err := GenerateRoomCode()
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.WithContext(ctx).Model(&models.Room{}).
			Where("room_code = ?", code).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", ErrRoomCodeExhausted
}
