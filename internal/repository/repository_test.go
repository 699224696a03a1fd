package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/design-studio/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

var ctx = context.Background()

func TestUserCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := NewUserRepo(db).Create(ctx, &model.User{ID: "u1", Username: "amal", Email: " Amal@Example.com "})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserGetNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM users WHERE id=?")).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepo(db).GetByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func quotaRow(limit, used int, unlimited bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"designs_limit", "designs_used", "is_unlimited"}).AddRow(limit, used, unlimited)
}

func TestQuotaReserveAdmits(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	hold := model.QuotaHold{ID: "h1", UserID: "u1", Token: "t1", ExpiresAt: now.Add(time.Minute)}

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM users WHERE id=? FOR UPDATE")).WithArgs("u1").WillReturnRows(quotaRow(3, 1, false))
	mock.ExpectExec(q("DELETE FROM quota_holds WHERE user_id=? AND expires_at<=?")).
		WithArgs("u1", now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("SELECT COUNT(*) FROM quota_holds")).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectExec(q("INSERT INTO quota_holds")).
		WithArgs("h1", "u1", "t1", hold.ExpiresAt, now).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	st, err := NewQuotaRepo(db).Reserve(ctx, hold, now)
	require.NoError(t, err)
	assert.Equal(t, model.Quota{UserID: "u1", Limit: 3, Used: 1}, st)
}

func TestQuotaReserveCountsActiveHolds(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).WithArgs("u1").WillReturnRows(quotaRow(3, 1, false))
	mock.ExpectExec(q("DELETE FROM quota_holds")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("SELECT COUNT(*) FROM quota_holds")).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectRollback()

	_, err := NewQuotaRepo(db).Reserve(ctx, model.QuotaHold{ID: "h", UserID: "u1", Token: "t"}, now)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestQuotaReserveUnlimitedIgnoresLimit(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).WillReturnRows(quotaRow(0, 40, true))
	mock.ExpectExec(q("DELETE FROM quota_holds")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("SELECT COUNT(*) FROM quota_holds")).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(5))
	mock.ExpectExec(q("INSERT INTO quota_holds")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	_, err := NewQuotaRepo(db).Reserve(ctx, model.QuotaHold{ID: "h", UserID: "u1", Token: "t"}, now)
	assert.NoError(t, err)
}

func TestQuotaCommit(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).WithArgs("u1").WillReturnRows(quotaRow(3, 1, false))
	mock.ExpectExec(q("DELETE FROM quota_holds WHERE token=? AND user_id=?")).
		WithArgs("t1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE users SET designs_used = designs_used + 1")).
		WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	st, err := NewQuotaRepo(db).Commit(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Used)
}

func TestQuotaCommitReplayChargesNothing(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).WillReturnRows(quotaRow(3, 2, false))
	mock.ExpectExec(q("DELETE FROM quota_holds WHERE token=?")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := NewQuotaRepo(db).Commit(ctx, "u1", "t1")
	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func TestQuotaDecrementIsFloored(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("GREATEST(designs_used - 1, 0)")).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("SELECT designs_limit, designs_used, is_unlimited FROM users WHERE id=?")).
		WithArgs("u1").WillReturnRows(quotaRow(3, 0, false))

	st, err := NewQuotaRepo(db).Decrement(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Used)
}

func TestDeleteDesignChecksOwner(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"id", "user_id", "prompt", "image_base64", "clothing_type", "template_id", "color",
		"phone_number", "user_photo_base64", "logo_base64", "is_favorite", "created_at"}
	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(cols).AddRow("d1", "owner", "p", "img", "tshirt", "", "", "", "", "", false, time.Now())
	}

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM designs WHERE id=? FOR UPDATE")).WithArgs("d1").WillReturnRows(row())
	mock.ExpectRollback()
	_, err := NewDesignRepo(db).DeleteAndRelease(ctx, "d1", "intruder")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).WithArgs("d1").WillReturnRows(row())
	mock.ExpectExec(q("DELETE FROM designs WHERE id=?")).WithArgs("d1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("GREATEST(designs_used - 1, 0)")).WithArgs("owner").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	d, err := NewDesignRepo(db).DeleteAndRelease(ctx, "d1", "")
	require.NoError(t, err)
	assert.Equal(t, "owner", d.UserID)
}

var couponCols = []string{"id", "code", "discount_percentage", "expiry_date", "is_active", "max_uses", "current_uses", "created_at"}

func TestRedeemInsertsUsageAndCounts(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	red := Redemption{UsageID: "cu1", Code: "WELCOME20", UserID: "u1", OrderID: "o1", Now: now}

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM coupons WHERE code=? FOR UPDATE")).WithArgs("WELCOME20").
		WillReturnRows(sqlmock.NewRows(couponCols).AddRow("c1", "WELCOME20", 20.0, now.Add(time.Hour), true, 1, 0, now))
	mock.ExpectQuery(q("FROM coupon_usages WHERE coupon_id=? AND order_id=?")).WithArgs("c1", "o1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(q("INSERT INTO coupon_usages")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("UPDATE coupons SET current_uses = current_uses + 1")).WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var seen model.Coupon
	usage, err := NewCouponRepo(db).Redeem(ctx, red, func(c model.Coupon) error { seen = c; return nil })
	require.NoError(t, err)
	assert.Equal(t, "cu1", usage.ID)
	assert.Equal(t, "c1", usage.CouponID)
	require.NotNil(t, seen.MaxUses)
	assert.Equal(t, 1, *seen.MaxUses)
}

func TestRedeemSameOrderReturnsExistingUsage(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows(couponCols).AddRow("c1", "WELCOME20", 20.0, now.Add(time.Hour), true, 1, 1, now))
	mock.ExpectQuery(q("FROM coupon_usages")).WithArgs("c1", "o1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "coupon_id", "coupon_code", "user_id", "order_id", "used_at"}).
			AddRow("cu1", "c1", "WELCOME20", "u1", "o1", now))
	mock.ExpectRollback()

	usage, err := NewCouponRepo(db).Redeem(ctx, Redemption{UsageID: "cu2", Code: "WELCOME20", UserID: "u1", OrderID: "o1", Now: now}, nil)
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)
	assert.Equal(t, "cu1", usage.ID)
}

func TestRedeemCheckFailureWritesNothing(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	rejected := errors.New("exhausted")

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows(couponCols).AddRow("c1", "SAVE10", 10.0, now.Add(time.Hour), true, 2, 2, now))
	mock.ExpectQuery(q("FROM coupon_usages")).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := NewCouponRepo(db).Redeem(ctx, Redemption{Code: "SAVE10", OrderID: "o2", Now: now},
		func(model.Coupon) error { return rejected })
	assert.ErrorIs(t, err, rejected)
}

func TestCreateOrderWithRedemptionRollsBackOnInsertFailure(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows(couponCols).AddRow("c1", "SAVE10", 10.0, now.Add(time.Hour), true, nil, 0, now))
	mock.ExpectQuery(q("FROM coupon_usages")).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(q("INSERT INTO coupon_usages")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("UPDATE coupons SET current_uses")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO orders")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	o := &model.Order{ID: "o1", UserID: "u1", Price: 110, FinalPrice: 110}
	_, err := NewOrderRepo(db).CreateWithRedemption(ctx, o, Redemption{UsageID: "cu1", Code: "SAVE10", UserID: "u1", Now: now},
		func(c model.Coupon) error {
			o.Discount, o.FinalPrice = 11, 99
			return nil
		})
	assert.EqualError(t, err, "disk full")
}

func TestUpdateStatusMissingOrder(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("SELECT 1 FROM orders WHERE id=?")).WithArgs("o9").WillReturnError(sql.ErrNoRows)
	assert.ErrorIs(t, NewOrderRepo(db).UpdateStatus(ctx, "o9", model.OrderCompleted), ErrNotFound)
}

func TestNotificationDeleteScopedToOwner(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("DELETE FROM notifications WHERE id=? AND user_id=?")).
		WithArgs("n1", "u2").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, NewNotificationRepo(db).Delete(ctx, "n1", "u2"), ErrNotFound)
}

func TestShowcaseTagsDecode(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"id", "title", "description", "prompt", "image_base64", "clothing_type", "color",
		"template_id", "tags", "likes_count", "is_featured", "is_active", "created_at", "updated_at"}
	mock.ExpectQuery(q("FROM showcase_designs WHERE is_active=TRUE")).WithArgs(20).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("s1", "Dunes", "d", "p", "img", "tshirt", "", "", []byte(`["desert","summer"]`), 4, true, true, time.Now(), nil))

	list, err := NewShowcaseRepo(db).ListActive(ctx, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"desert", "summer"}, list[0].Tags)
	assert.Nil(t, list[0].UpdatedAt)
}

func TestStatsSnapshot(t *testing.T) {
	db, mock := newMock(t)
	db.SetMaxOpenConns(1)
	mock.MatchExpectationsInOrder(false)
	count := func(pattern string, n int, args ...driver.Value) {
		e := mock.ExpectQuery(pattern)
		if len(args) > 0 {
			e = e.WithArgs(args...)
		}
		e.WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(n))
	}
	count(`^SELECT COUNT\(\*\) FROM users$`, 4)
	count(`FROM orders WHERE status=\?`, 2, "pending")
	count(`FROM orders WHERE status=\?`, 1, "completed")
	count(`^SELECT COUNT\(\*\) FROM orders$`, 3)
	count(`^SELECT COUNT\(\*\) FROM designs$`, 5)
	count(`^SELECT COUNT\(\*\) FROM showcase_designs$`, 6)
	count(`^SELECT COUNT\(\*\) FROM coupons$`, 2)
	mock.ExpectQuery(q("SUM(final_price)")).WillReturnRows(sqlmock.NewRows([]string{"s"}).AddRow(309.5))

	st, err := NewStatsRepo(db).Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{
		TotalUsers: 4, TotalOrders: 3, TotalDesigns: 5, TotalShowcase: 6, TotalCoupons: 2,
		PendingOrders: 2, CompletedOrders: 1, TotalRevenue: 309.5,
	}, st)
}

func TestUserUpdateMeasurements(t *testing.T) {
	db, mock := newMock(t)
	chest := 96.5
	m := model.Measurements{Chest: &chest, PreferredSize: "L"}

	mock.ExpectExec(q("UPDATE users SET measurements=? WHERE id=?")).
		WithArgs([]byte(`{"chest":96.5,"preferred_size":"L"}`), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	cols := []string{"id", "username", "email", "password_hash", "is_admin", "designs_limit",
		"designs_used", "is_unlimited", "email_verified", "measurements", "created_at"}
	mock.ExpectQuery(q("FROM users WHERE id=?")).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "amal", "amal@example.com", "hash", false, 3,
			0, false, false, []byte(`{"chest":96.5,"preferred_size":"L"}`), time.Now()))

	u, err := NewUserRepo(db).UpdateMeasurements(ctx, "u1", m)
	require.NoError(t, err)
	require.NotNil(t, u.Measurements)
	assert.Equal(t, 96.5, *u.Measurements.Chest)
	assert.Equal(t, "L", u.Measurements.PreferredSize)
}

func TestUserScanWithoutMeasurements(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"id", "username", "email", "password_hash", "is_admin", "designs_limit",
		"designs_used", "is_unlimited", "email_verified", "measurements", "created_at"}
	mock.ExpectQuery(q("FROM users WHERE username=?")).WithArgs("amal").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "amal", "amal@example.com", "hash", false, 3,
			1, false, true, nil, time.Now()))

	u, err := NewUserRepo(db).GetByUsername(ctx, "amal")
	require.NoError(t, err)
	assert.Nil(t, u.Measurements)
	assert.Equal(t, 1, u.DesignsUsed)
}
