package data

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Models struct {
	Rooms    RoomModel
	Sessions SessionModel
}

// NewModels wires the models to the store. A nil pool builds an unconfigured
// set whose operations all return ErrNotConfigured instead of panicking,
// covering the missing-DSN case.
func NewModels(pool *pgxpool.Pool, logger *zap.Logger, linkBase string) *Models {
	m := &Models{
		Rooms: RoomModel{
			Logger:   logger,
			LinkBase: linkBase,
		},
		Sessions: SessionModel{
			Pool: pool,
		},
	}
	if pool != nil {
		m.Rooms.Store = &PostgresRoomStore{Pool: pool}
	}
	return m
}
