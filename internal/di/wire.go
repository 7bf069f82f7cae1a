//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"taskchat/internal/config"
)

// This is just a declaration, wire generates the real body in wire_gen.go
func InitializeChatService(cfg *config.Config) (*Application, func(), error) {
	wire.Build(
		storeSet,
		chatSet,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil, nil
}
