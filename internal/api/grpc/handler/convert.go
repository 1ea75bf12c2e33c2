package handler

import (
	"github.com/dtroode/golekaab-server/internal/api/grpc/wire"
	"github.com/dtroode/golekaab-server/internal/model"
)

func toWireUser(u model.PublicUser) *wire.User {
	return &wire.User{
		ID:     u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
		Locale: string(u.Locale),
	}
}
