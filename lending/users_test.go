package lending

import (
	"context"
	"io"
	"testing"

	"Gin_postgres_redis_av_lending/db"
	"Gin_postgres_redis_av_lending/db/dbtest"
	"Gin_postgres_redis_av_lending/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	u, err := e.svc.CreateUser(ctx, e.admin, UserInput{Name: " María ", Email: "Maria@Example.com", Password: "secreto1"})
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", u.Email)
	assert.Equal(t, "María", u.Name)
	assert.NotEqual(t, "secreto1", u.PasswordHash)

	got, err := e.svc.Authenticate(ctx, "MARIA@example.com", "secreto1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = e.svc.Authenticate(ctx, "maria@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.svc.Authenticate(ctx, "nobody@example.com", "secreto1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = e.svc.CreateUser(ctx, e.admin, UserInput{Name: "Otra", Email: "maria@example.com", Password: "secreto2"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, msgEmailTaken, ve.Fields["email"])

	_, err = e.svc.CreateUser(ctx, e.admin, UserInput{Name: "Sin clave", Email: "x@example.com"})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "password")
}

func TestUpdateUserKeepsPasswordWhenBlank(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u, err := e.svc.CreateUser(ctx, e.admin, UserInput{Name: "Luis", Email: "luis@example.com", Password: "secreto1"})
	require.NoError(t, err)

	updated, err := e.svc.UpdateUser(ctx, e.admin, u.ID, UserInput{Name: "Luis R", Email: "luis@example.com", IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, "Luis R", updated.Name)
	assert.True(t, updated.IsAdmin)

	_, err = e.svc.Authenticate(ctx, "luis@example.com", "secreto1")
	assert.NoError(t, err)

	_, err = e.svc.UpdateUser(ctx, e.admin, u.ID, UserInput{Name: "Luis", Email: "clerk@example.com"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	assert.ErrorIs(t, e.svc.DeleteUser(ctx, e.admin, e.admin.UserID), ErrSelfDelete)

	// 保管人名下物品从未借出：连物品一起删除
	custodian, err := e.svc.CreateUser(ctx, e.admin, UserInput{Name: "Custodio", Email: "c@example.com", Password: "secreto1"})
	require.NoError(t, err)
	cp := Principal{UserID: custodian.ID}
	it, err := e.svc.CreateItem(ctx, cp, ItemInput{Placa: "AUD01", Name: "Parlante", Category: "audio", Description: "d"})
	require.NoError(t, err)

	require.NoError(t, e.svc.DeleteUser(ctx, e.admin, custodian.ID))
	_, err = e.svc.GetUser(ctx, e.admin, custodian.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.svc.GetItem(ctx, e.admin, it.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// 登记过借用的用户不能删
	item := e.item(t, "Cámara", "CAM001")
	p := e.person(t, "1")
	_, err = e.svc.RegisterLoan(ctx, e.clerk, LoanInput{ItemID: item.ID, PersonID: p.ID})
	require.NoError(t, err)
	assert.ErrorIs(t, e.svc.DeleteUser(ctx, e.admin, e.clerk.UserID), ErrHasLoans)

	assert.ErrorIs(t, e.svc.DeleteUser(ctx, e.admin, "missing"), ErrNotFound)
}

func TestGetUserSelfOrAdmin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	me, err := e.svc.GetUser(ctx, e.clerk, e.clerk.UserID)
	require.NoError(t, err)
	assert.Equal(t, "clerk@example.com", me.Email)

	_, err = e.svc.GetUser(ctx, e.clerk, e.admin.UserID)
	assert.ErrorIs(t, err, ErrForbidden)

	res, err := e.svc.ListUsers(ctx, e.admin, "CLERK", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
}

// 权限检查在访问存储之前：库已关闭，非管理员仍然拿到 ErrForbidden 而不是数据库错误
func TestAuthorizationBeforeStoreAccess(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	svc := New(db.NewRepo(conn), zerolog.New(io.Discard))
	clerk := Principal{UserID: "clerk"}
	anon := Principal{}

	_, err = svc.CreateUser(ctx, clerk, UserInput{Name: "x", Email: "x@example.com", Password: "secreto1"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.UpdateUser(ctx, clerk, "u", UserInput{})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ListUsers(ctx, clerk, "", 1, 10)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.DeleteUser(ctx, clerk, "u"), ErrForbidden)
	assert.ErrorIs(t, svc.DeletePerson(ctx, clerk, "p"), ErrForbidden)
	_, err = svc.ListLoans(ctx, clerk, LoanFilter{})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ListActivity(ctx, clerk, "", 10)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreateItem(ctx, anon, ItemInput{})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.RegisterLoan(ctx, anon, LoanInput{})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ReturnLoan(ctx, anon, "l")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ListPersons(ctx, anon, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestActivityRecordsTransitions(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	it := e.item(t, "Cámara", "CAM001")
	p := e.person(t, "1")
	loan, err := e.svc.RegisterLoan(ctx, e.clerk, LoanInput{ItemID: it.ID, PersonID: p.ID})
	require.NoError(t, err)
	_, err = e.svc.ReturnLoan(ctx, e.admin, loan.ID)
	require.NoError(t, err)

	logs, err := e.svc.ListActivity(ctx, e.admin, loan.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	actions := []string{logs[0].Action, logs[1].Action}
	assert.ElementsMatch(t, []string{"loan.open", "loan." + string(models.LoanReturned)}, actions)
}
