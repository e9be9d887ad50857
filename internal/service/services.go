package service

import (
	"github.com/kmorrow/todo-list-api/internal/config"
	"github.com/kmorrow/todo-list-api/internal/repository"
)

type Services struct {
	Token *TokenService
	Auth  *AuthService
	Todo  *TodoService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, events TodoEventPublisher) *Services {
	tokens := NewTokenService(cfg)

	return &Services{
		Token: tokens,
		Auth:  NewAuthService(repos.User, repos.RefreshToken, tokens),
		Todo:  NewTodoService(repos.Todo, events),
	}
}
