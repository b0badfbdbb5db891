package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"accountbook/internal/db"
	"accountbook/internal/model"
)

type RepositorySuite struct {
	suite.Suite
	ctx          context.Context
	db           *gorm.DB
	users        UserRepository
	categories   CategoryRepository
	transactions TransactionRepository

	alice, bob     *model.User
	salary, dining model.Category
	transport      model.Category
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	gormDB, err := db.NewSQLite(":memory:")
	s.Require().NoError(err)

	s.ctx = context.Background()
	s.db = gormDB
	s.users = NewUserRepository(gormDB)
	s.categories = NewCategoryRepository(gormDB)
	s.transactions = NewTransactionRepository(gormDB)

	s.alice = &model.User{Username: "alice", PasswordHash: "x", Email: "alice@example.com"}
	s.bob = &model.User{Username: "bob", PasswordHash: "x", Email: "bob@example.com"}
	s.Require().NoError(s.users.Create(s.ctx, s.alice))
	s.Require().NoError(s.users.Create(s.ctx, s.bob))

	s.salary = s.category("工资", model.TypeIncome)
	s.dining = s.category("餐饮", model.TypeExpense)
	s.transport = s.category("交通", model.TypeExpense)
}

func (s *RepositorySuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	s.Require().NoError(sqlDB.Close())
}

func (s *RepositorySuite) category(name string, typ model.TransactionType) model.Category {
	var c model.Category
	s.Require().NoError(s.db.Where("name = ? AND type = ?", name, typ).First(&c).Error)
	return c
}

func (s *RepositorySuite) date(v string) model.Date {
	d, err := model.ParseDate(v)
	s.Require().NoError(err)
	return d
}

func (s *RepositorySuite) add(user *model.User, cat model.Category, amount, day string) *model.Transaction {
	txn := &model.Transaction{
		UserID:          user.ID,
		CategoryID:      cat.ID,
		Amount:          decimal.RequireFromString(amount),
		Type:            cat.Type,
		TransactionDate: s.date(day),
	}
	s.Require().NoError(s.transactions.Create(s.ctx, txn))
	s.Require().NotZero(txn.ID)
	return txn
}

func (s *RepositorySuite) TestUser_DuplicateUsernameIsTranslated() {
	err := s.users.Create(s.ctx, &model.User{Username: "alice", PasswordHash: "x", Email: "other@example.com"})
	s.ErrorIs(err, gorm.ErrDuplicatedKey)

	err = s.users.Create(s.ctx, &model.User{Username: "carol", PasswordHash: "x", Email: "alice@example.com"})
	s.ErrorIs(err, gorm.ErrDuplicatedKey)
}

func (s *RepositorySuite) TestUser_Find() {
	found, err := s.users.FindByUsername(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(s.bob.ID, found.ID)

	_, err = s.users.FindByID(s.ctx, 9999)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *RepositorySuite) TestCategory_ListAndUpsert() {
	all, err := s.categories.List(s.ctx, "")
	s.Require().NoError(err)
	s.Len(all, len(db.DefaultCategories()))
	s.Equal(model.TypeExpense, all[0].Type, "expense sorts before income")

	income, err := s.categories.List(s.ctx, model.TypeIncome)
	s.Require().NoError(err)
	for _, c := range income {
		s.Equal(model.TypeIncome, c.Type)
	}

	s.Require().NoError(s.categories.Upsert(s.ctx, []model.Category{
		{Name: "工资", Type: model.TypeIncome, Icon: "fa-wallet"},
		{Name: "宠物", Type: model.TypeExpense, Icon: "fa-paw"},
	}))
	s.Equal("fa-wallet", s.category("工资", model.TypeIncome).Icon)
	s.NotZero(s.category("宠物", model.TypeExpense).ID)

	exists, err := s.categories.Exists(s.ctx, s.salary.ID)
	s.Require().NoError(err)
	s.True(exists)
	exists, err = s.categories.Exists(s.ctx, 9999)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *RepositorySuite) TestTransaction_ListFiltersAndOrder() {
	first := s.add(s.alice, s.dining, "10.00", "2024-01-02")
	second := s.add(s.alice, s.dining, "20.00", "2024-01-02")
	s.add(s.alice, s.salary, "1000.00", "2024-01-05")
	s.add(s.alice, s.transport, "3.50", "2023-12-31")
	s.add(s.bob, s.dining, "99.00", "2024-01-02")

	rows, err := s.transactions.List(s.ctx, s.alice.ID, model.TransactionFilter{})
	s.Require().NoError(err)
	s.Require().Len(rows, 4)
	s.Equal("2024-01-05", rows[0].TransactionDate.String())
	s.Equal(second.ID, rows[1].ID, "same-day rows fall back to id descending")
	s.Equal(first.ID, rows[2].ID)
	s.Equal("餐饮", rows[1].CategoryName)
	s.Equal("fa-utensils", rows[1].CategoryIcon)
	s.True(rows[1].Amount.Equal(decimal.NewFromInt(20)))

	start, end := s.date("2024-01-01"), s.date("2024-01-31")
	rows, err = s.transactions.List(s.ctx, s.alice.ID, model.TransactionFilter{StartDate: &start, EndDate: &end, Type: model.TypeExpense})
	s.Require().NoError(err)
	s.Len(rows, 2)

	rows, err = s.transactions.List(s.ctx, s.alice.ID, model.TransactionFilter{CategoryID: s.transport.ID})
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("2023-12-31", rows[0].TransactionDate.String())

	rows, err = s.transactions.List(s.ctx, s.alice.ID, model.TransactionFilter{EndDate: &start})
	s.Require().NoError(err)
	s.Len(rows, 1, "end bound alone is honoured")
}

func (s *RepositorySuite) TestTransaction_OwnershipScopedMutations() {
	txn := s.add(s.alice, s.dining, "10.00", "2024-01-02")

	_, err := s.transactions.FindOwnedForUpdate(s.ctx, txn.ID, s.bob.ID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)

	affected, err := s.transactions.DeleteOwned(s.ctx, txn.ID, s.bob.ID)
	s.Require().NoError(err)
	s.Zero(affected)

	err = s.transactions.WithTransaction(s.ctx, func(ctx context.Context, repo TransactionRepository) error {
		locked, err := repo.FindOwnedForUpdate(ctx, txn.ID, s.alice.ID)
		if err != nil {
			return err
		}
		locked.Amount = decimal.RequireFromString("12.34")
		locked.Description = "lunch"
		locked.TransactionDate = s.date("2024-01-03")
		return repo.UpdateOwned(ctx, locked)
	})
	s.Require().NoError(err)

	rows, err := s.transactions.List(s.ctx, s.alice.ID, model.TransactionFilter{})
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("lunch", rows[0].Description)
	s.Equal("2024-01-03", rows[0].TransactionDate.String())
	s.True(rows[0].Amount.Equal(decimal.RequireFromString("12.34")))

	affected, err = s.transactions.DeleteOwned(s.ctx, txn.ID, s.alice.ID)
	s.Require().NoError(err)
	s.EqualValues(1, affected)

	rows, err = s.transactions.List(s.ctx, s.alice.ID, model.TransactionFilter{})
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *RepositorySuite) TestTransaction_Aggregates() {
	s.add(s.alice, s.salary, "1000.00", "2024-01-05")
	s.add(s.alice, s.dining, "10.00", "2024-01-02")
	s.add(s.alice, s.dining, "15.50", "2024-01-02")
	s.add(s.alice, s.transport, "40.00", "2024-01-09")
	s.add(s.alice, s.transport, "500.00", "2024-02-01")
	s.add(s.bob, s.dining, "77.00", "2024-01-02")

	start, end := s.date("2024-01-01"), s.date("2024-01-31")

	totals, err := s.transactions.Totals(s.ctx, s.alice.ID, start, end)
	s.Require().NoError(err)
	byType := map[model.TransactionType]decimal.Decimal{}
	for _, t := range totals {
		byType[t.Type] = t.Total
	}
	s.True(byType[model.TypeIncome].Equal(decimal.NewFromInt(1000)))
	s.True(byType[model.TypeExpense].Equal(decimal.RequireFromString("65.5")))

	cats, err := s.transactions.CategoryTotals(s.ctx, s.alice.ID, model.TypeExpense, start, end)
	s.Require().NoError(err)
	s.Require().Len(cats, 2)
	s.Equal(s.transport.ID, cats[0].ID, "largest total first")
	s.Equal("交通", cats[0].CategoryName)
	s.Equal("fa-bus", cats[0].Icon)
	s.True(cats[1].Total.Equal(decimal.RequireFromString("25.5")))

	daily, err := s.transactions.DailyTotals(s.ctx, s.alice.ID, start, end)
	s.Require().NoError(err)
	s.Require().Len(daily, 3)
	s.Equal("2024-01-02", daily[0].Day.String())
	s.Equal(model.TypeExpense, daily[0].Type)
	s.True(daily[0].Total.Equal(decimal.RequireFromString("25.5")))
}

func (s *RepositorySuite) TestTransaction_AggregatesRoundToCents() {
	s.add(s.alice, s.salary, "0.10", "2024-03-01")
	s.add(s.alice, s.salary, "0.20", "2024-03-01")
	start, end := s.date("2024-03-01"), s.date("2024-03-31")
	want := decimal.RequireFromString("0.30")

	totals, err := s.transactions.Totals(s.ctx, s.alice.ID, start, end)
	s.Require().NoError(err)
	s.Require().Len(totals, 1)
	s.True(totals[0].Total.Equal(want), "got %s", totals[0].Total)

	cats, err := s.transactions.CategoryTotals(s.ctx, s.alice.ID, model.TypeIncome, start, end)
	s.Require().NoError(err)
	s.Require().Len(cats, 1)
	s.True(cats[0].Total.Equal(want), "got %s", cats[0].Total)

	daily, err := s.transactions.DailyTotals(s.ctx, s.alice.ID, start, end)
	s.Require().NoError(err)
	s.Require().Len(daily, 1)
	s.True(daily[0].Total.Equal(want), "got %s", daily[0].Total)
}
