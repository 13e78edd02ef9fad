package db_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"Gin_postgres_redis_av_lending/db"
	"Gin_postgres_redis_av_lending/db/dbtest"
	"Gin_postgres_redis_av_lending/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	repo   *db.Repo
	conn   *gorm.DB
	owner  *models.User
	person *models.Person
	item   *models.Item
}

func newFixture(t *testing.T) *fixture {
	conn := dbtest.Open(t)
	owner := dbtest.User(t, conn, "owner@example.com", false)
	return &fixture{
		repo:   db.NewRepo(conn),
		conn:   conn,
		owner:  owner,
		person: dbtest.Person(t, conn, "1234567890"),
		item:   dbtest.Item(t, conn, owner.ID, "CAM001"),
	}
}

func (f *fixture) open(t *testing.T, status models.LoanStatus) *models.Loan {
	t.Helper()
	l, err := f.repo.OpenLoan(context.Background(), db.OpenLoanInput{
		ItemID: f.item.ID, PersonID: f.person.ID, UserID: f.owner.ID, Status: status, At: time.Now().UTC(),
	})
	require.NoError(t, err)
	return l
}

func TestOpenLoanFlipsAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	l := f.open(t, models.LoanActive)
	assert.Equal(t, models.LoanActive, l.Status)

	avail, err := f.repo.IsItemAvailable(ctx, f.item.ID)
	require.NoError(t, err)
	assert.False(t, avail)

	_, err = f.repo.OpenLoan(ctx, db.OpenLoanInput{
		ItemID: f.item.ID, PersonID: f.person.ID, UserID: f.owner.ID, Status: models.LoanPending, At: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, db.ErrItemUnavailable)

	n, err := f.repo.CountOpenLoans(ctx, f.item.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestOpenLoanUnknownPerson(t *testing.T) {
	f := newFixture(t)
	_, err := f.repo.OpenLoan(context.Background(), db.OpenLoanInput{
		ItemID: f.item.ID, PersonID: uuid.NewString(), UserID: f.owner.ID, Status: models.LoanActive, At: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	avail, err := f.repo.IsItemAvailable(context.Background(), f.item.ID)
	require.NoError(t, err)
	assert.True(t, avail, "rolled back")
}

func TestOpenLoanIndexBackstop(t *testing.T) {
	f := newFixture(t)
	f.open(t, models.LoanActive)

	// 绕过 OpenLoan 直接插第二条 open loan
	err := f.conn.Omit("User", "Item", "Person").Create(&models.Loan{
		ID: uuid.NewString(), UserID: f.owner.ID, ItemID: f.item.ID, PersonID: f.person.ID,
		LoanedAt: time.Now(), Status: models.LoanPending,
	}).Error
	require.Error(t, err)
	col, ok := db.IsUniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "item_id", col)

	// 已结束的借用不受限制
	err = f.conn.Omit("User", "Item", "Person").Create(&models.Loan{
		ID: uuid.NewString(), UserID: f.owner.ID, ItemID: f.item.ID, PersonID: f.person.ID,
		LoanedAt: time.Now(), Status: models.LoanReturned,
	}).Error
	assert.NoError(t, err)
}

func TestChangeLoanRejectedWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.open(t, models.LoanActive)

	got, err := f.repo.ChangeLoan(ctx, l.ID, f.owner.ID, func(*models.Loan) (db.LoanChange, error) {
		return db.LoanChange{}, db.ErrItemInUse
	})
	assert.ErrorIs(t, err, db.ErrItemInUse)
	require.NotNil(t, got)
	assert.Equal(t, models.LoanActive, got.Status)

	now := time.Now().UTC()
	got, err = f.repo.ChangeLoan(ctx, l.ID, f.owner.ID, func(*models.Loan) (db.LoanChange, error) {
		return db.LoanChange{Status: models.LoanReturned, ReturnedAt: &now, ReleaseItem: true}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.LoanReturned, got.Status)

	avail, err := f.repo.IsItemAvailable(ctx, f.item.ID)
	require.NoError(t, err)
	assert.True(t, avail)

	logs, err := f.repo.ListActivity(ctx, l.ID, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 2) // loan.open + loan.returned
}

func TestChangeLoanNotFound(t *testing.T) {
	f := newFixture(t)
	got, err := f.repo.ChangeLoan(context.Background(), uuid.NewString(), f.owner.ID, func(*models.Loan) (db.LoanChange, error) {
		t.Error("decide must not run")
		return db.LoanChange{}, nil
	})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteItemRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, models.LoanActive)
	assert.ErrorIs(t, f.repo.DeleteItem(ctx, f.item.ID, f.owner.ID), db.ErrItemInUse)

	spare := dbtest.Item(t, f.conn, f.owner.ID, "MIC002")
	require.NoError(t, f.repo.DeleteItem(ctx, spare.ID, f.owner.ID))
	_, err := f.repo.FindItemByID(ctx, spare.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeletePersonWithLoans(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, models.LoanActive)
	assert.ErrorIs(t, f.repo.DeletePerson(ctx, f.person.ID, f.owner.ID), db.ErrHasLoans)

	other := dbtest.Person(t, f.conn, "999")
	require.NoError(t, f.repo.DeletePerson(ctx, other.ID, f.owner.ID))
}

func TestDeleteUserCascade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// 名下物品没有借用历史：连同物品一起删
	custodian := dbtest.User(t, f.conn, "custodian@example.com", false)
	dbtest.Item(t, f.conn, custodian.ID, "PRJ001")
	dbtest.Item(t, f.conn, custodian.ID, "PRJ002")
	n, err := f.repo.DeleteUserCascade(ctx, custodian.ID, f.owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	_, err = f.repo.FindUserByID(ctx, custodian.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 名下物品被借过：拒绝
	f.open(t, models.LoanActive)
	admin := dbtest.User(t, f.conn, "admin@example.com", true)
	_, err = f.repo.DeleteUserCascade(ctx, f.owner.ID, admin.ID)
	assert.ErrorIs(t, err, db.ErrHasLoans)
	_, err = f.repo.FindItemByID(ctx, f.item.ID)
	assert.NoError(t, err)
}

func TestListItemsWithCurrentLoan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dbtest.Item(t, f.conn, f.owner.ID, "MIC002")
	l := f.open(t, models.LoanActive)

	all, err := f.repo.ListItemsWithCurrentLoan(ctx, db.ItemsQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	onLoan, err := f.repo.ListItemsWithCurrentLoan(ctx, db.ItemsQuery{Placa: "cam"})
	require.NoError(t, err)
	require.Len(t, onLoan.Items, 1)
	row := onLoan.Items[0]
	assert.False(t, row.Available)
	require.NotNil(t, row.LoanID)
	assert.Equal(t, l.ID, *row.LoanID)
	require.NotNil(t, row.BorrowerIdent)
	assert.Equal(t, "1234567890", *row.BorrowerIdent)

	avail, err := f.repo.ListItemsWithCurrentLoan(ctx, db.ItemsQuery{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, avail.Items, 1)
	assert.Equal(t, "MIC002", avail.Items[0].Placa)
	assert.Nil(t, avail.Items[0].LoanID)
}

func TestListLoansFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.open(t, models.LoanPending)

	open, err := f.repo.ListLoans(ctx, db.LoansQuery{Status: "open"})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, l.ID, open[0].ID)
	require.NotNil(t, open[0].Item)
	assert.Equal(t, "CAM001", open[0].Item.Placa)

	returned, err := f.repo.ListLoans(ctx, db.LoansQuery{Status: string(models.LoanReturned)})
	require.NoError(t, err)
	assert.Empty(t, returned)

	mine, err := f.repo.ListLoans(ctx, db.LoansQuery{UserID: f.owner.ID, PersonID: f.person.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

// 空结果要序列化成 []，不是 null
func TestEmptyListsEncodeAsArrays(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepo(dbtest.Open(t))

	ps, err := repo.ListPersons(ctx, "nobody")
	require.NoError(t, err)
	cats, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	loans, err := repo.ListLoans(ctx, db.LoansQuery{})
	require.NoError(t, err)

	for name, v := range map[string]any{"persons": ps, "categories": cats, "loans": loans} {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, "[]", string(b), name)
	}
}

func TestTakenExcludesSelf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	taken, err := f.repo.PlacaTaken(ctx, "CAM001", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = f.repo.PlacaTaken(ctx, "CAM001", f.item.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = f.repo.UserEmailTaken(ctx, " OWNER@example.com ", "")
	require.NoError(t, err)
	assert.True(t, taken)
}
