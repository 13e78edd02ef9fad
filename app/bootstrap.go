// app/bootstrap.go
package app

import (
	"context"

	"Gin_postgres_redis_av_lending/lending"
)

// BootstrapFirstAdmin 库里还没有管理员时，用 BOOTSTRAP_ADMIN_* 建第一个
func BootstrapFirstAdmin(ctx context.Context, a *App) {
	cfg := a.Config
	if cfg.BootstrapEmail == "" || cfg.BootstrapPwd == "" {
		return
	}
	n, err := a.Repo.CountAdmins(ctx)
	if err != nil {
		a.Log.Error().Err(err).Msg("bootstrap: count admins")
		return
	}
	if n > 0 {
		return // 已经有管理员，跳过
	}
	u, err := a.Svc.ProvisionUser(ctx, lending.UserInput{
		Name:     "Administrator",
		Email:    cfg.BootstrapEmail,
		Password: cfg.BootstrapPwd,
		IsAdmin:  true,
	})
	if err != nil {
		a.Log.Error().Err(err).Str("email", cfg.BootstrapEmail).Msg("bootstrap: create admin")
		return
	}
	a.Log.Info().Str("user_id", u.ID).Str("email", u.Email).Msg("bootstrap: first admin created")
}
