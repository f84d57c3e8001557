package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"simplewallet/internal/core"
)

// RepositoryTestSuite exercises the SQLite repository against an
// in-memory database.
type RepositoryTestSuite struct {
	suite.Suite
	repo *Repository
	ctx  context.Context

	alice core.User
	bob   core.User
}

func (s *RepositoryTestSuite) SetupTest() {
	repo, err := NewRepository(":memory:")
	require.NoError(s.T(), err, "failed to open test database")
	s.repo = repo
	s.ctx = context.Background()

	s.alice, err = repo.CreateUser(s.ctx, core.User{
		Username: "alice", Password: "$2a$10$hash", Email: "alice@example.com",
	})
	require.NoError(s.T(), err)
	s.bob, err = repo.CreateUser(s.ctx, core.User{
		Username: "bob", Password: "$2a$10$hash", Email: "bob@example.com",
	})
	require.NoError(s.T(), err)
}

func (s *RepositoryTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func (s *RepositoryTestSuite) newAccount(userID string) core.Account {
	a, err := s.repo.CreateAccount(s.ctx, core.Account{
		Description: "checking",
		Balance:     decimal.RequireFromString("100.00"),
		Credit:      decimal.Zero,
		DueDate:     10,
		UserID:      userID,
	})
	require.NoError(s.T(), err)
	return a
}

func (s *RepositoryTestSuite) newCategory(userID string) core.Category {
	c, err := s.repo.CreateCategory(s.ctx, core.Category{
		Category: "groceries", Type: core.Debit, Color: "#00aa00", UserID: userID,
	})
	require.NoError(s.T(), err)
	return c
}

func (s *RepositoryTestSuite) newTransaction(userID string, accountID, categoryID int64, due core.Date) core.Transaction {
	t, err := s.repo.CreateTransaction(s.ctx, core.Transaction{
		Description: "weekly shop",
		Amount:      decimal.RequireFromString("42.50"),
		Type:        core.Debit,
		DueDate:     due,
		AccountID:   accountID,
		CategoryID:  categoryID,
		UserID:      userID,
	})
	require.NoError(s.T(), err)
	return t
}

func (s *RepositoryTestSuite) TestAccountRoundTrip() {
	created := s.newAccount(s.alice.ID.String())
	assert.NotZero(s.T(), created.ID)

	got, err := s.repo.GetAccount(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.Equal(s.T(), "checking", got.Description)
	assert.True(s.T(), got.Balance.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(s.T(), s.alice.ID.String(), got.UserID)

	got.Description = "savings"
	got.Balance = decimal.RequireFromString("250.75")
	require.NoError(s.T(), s.repo.UpdateAccount(s.ctx, *got))

	updated, err := s.repo.GetAccount(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "savings", updated.Description)
	assert.True(s.T(), updated.Balance.Equal(decimal.RequireFromString("250.75")))

	require.NoError(s.T(), s.repo.DeleteAccount(s.ctx, created.ID))
	gone, err := s.repo.GetAccount(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), gone, "deleted account should read as missing")
}

func (s *RepositoryTestSuite) TestGetAccountMissing() {
	got, err := s.repo.GetAccount(s.ctx, 9999)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got)
}

func (s *RepositoryTestSuite) TestListAccountsByOwnerSet() {
	s.newAccount(s.alice.ID.String())
	s.newAccount(s.bob.ID.String())

	mine, err := s.repo.ListAccounts(s.ctx, []string{s.alice.ID.String()})
	require.NoError(s.T(), err)
	assert.Len(s.T(), mine, 1)

	both, err := s.repo.ListAccounts(s.ctx, []string{s.alice.ID.String(), s.bob.ID.String()})
	require.NoError(s.T(), err)
	assert.Len(s.T(), both, 2)

	none, err := s.repo.ListAccounts(s.ctx, nil)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), none)
}

func (s *RepositoryTestSuite) TestCategoryRoundTrip() {
	created := s.newCategory(s.alice.ID.String())

	got, err := s.repo.GetCategory(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.Equal(s.T(), core.Debit, got.Type)
	assert.Equal(s.T(), "#00aa00", got.Color)

	got.Category = "food"
	got.Type = core.Credit
	require.NoError(s.T(), s.repo.UpdateCategory(s.ctx, *got))

	updated, err := s.repo.GetCategory(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "food", updated.Category)
	assert.Equal(s.T(), core.Credit, updated.Type)
}

func (s *RepositoryTestSuite) TestTransactionRoundTrip() {
	acc := s.newAccount(s.alice.ID.String())
	cat := s.newCategory(s.alice.ID.String())

	created := s.newTransaction(s.alice.ID.String(), acc.ID, cat.ID, core.NewDate(2024, 1, 31))
	assert.NotZero(s.T(), created.ID)
	assert.False(s.T(), created.Created.IsZero(), "storage must set creation timestamp")
	assert.False(s.T(), created.Updated.IsZero(), "storage must set update timestamp")

	got, err := s.repo.GetTransaction(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.Equal(s.T(), "weekly shop", got.Description)
	assert.Equal(s.T(), "2024-01-31", got.DueDate.String())
	assert.Nil(s.T(), got.EffectiveDate)
	assert.Nil(s.T(), got.EffectiveAmount)

	effDate := core.NewDate(2024, 2, 1)
	effAmount := decimal.RequireFromString("41.99")
	got.EffectiveDate = &effDate
	got.EffectiveAmount = &effAmount
	require.NoError(s.T(), s.repo.UpdateTransaction(s.ctx, *got))

	updated, err := s.repo.GetTransaction(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), updated.EffectiveDate)
	assert.Equal(s.T(), "2024-02-01", updated.EffectiveDate.String())
	require.NotNil(s.T(), updated.EffectiveAmount)
	assert.True(s.T(), updated.EffectiveAmount.Equal(effAmount))
	assert.Equal(s.T(), created.Created.UnixNano(), updated.Created.UnixNano(),
		"creation timestamp is immutable")

	require.NoError(s.T(), s.repo.DeleteTransaction(s.ctx, created.ID))
	gone, err := s.repo.GetTransaction(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), gone)
}

func (s *RepositoryTestSuite) TestExistsTransactionByCategory() {
	acc := s.newAccount(s.alice.ID.String())
	cat := s.newCategory(s.alice.ID.String())

	exists, err := s.repo.ExistsTransactionByCategory(s.ctx, cat.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), exists)

	s.newTransaction(s.alice.ID.String(), acc.ID, cat.ID, core.NewDate(2024, 3, 1))

	exists, err = s.repo.ExistsTransactionByCategory(s.ctx, cat.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), exists)
}

func (s *RepositoryTestSuite) TestListTransactionsPaged() {
	acc := s.newAccount(s.alice.ID.String())
	cat := s.newCategory(s.alice.ID.String())
	for day := 1; day <= 5; day++ {
		s.newTransaction(s.alice.ID.String(), acc.ID, cat.ID, core.NewDate(2024, 6, day))
	}
	// A foreign row that must never appear in alice's pages.
	bobAcc := s.newAccount(s.bob.ID.String())
	bobCat := s.newCategory(s.bob.ID.String())
	s.newTransaction(s.bob.ID.String(), bobAcc.ID, bobCat.ID, core.NewDate(2024, 6, 1))

	page, err := s.repo.ListTransactionsPaged(s.ctx, []string{s.alice.ID.String()},
		PageRequest{Page: 0, Size: 2, Sort: "dueDate"})
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 5, page.TotalElements)
	assert.Equal(s.T(), 3, page.TotalPages)
	require.Len(s.T(), page.Items, 2)
	assert.Equal(s.T(), "2024-06-01", page.Items[0].DueDate.String())
	assert.Equal(s.T(), "2024-06-02", page.Items[1].DueDate.String())

	last, err := s.repo.ListTransactionsPaged(s.ctx, []string{s.alice.ID.String()},
		PageRequest{Page: 2, Size: 2, Sort: "dueDate"})
	require.NoError(s.T(), err)
	require.Len(s.T(), last.Items, 1)
	assert.Equal(s.T(), "2024-06-05", last.Items[0].DueDate.String())

	desc, err := s.repo.ListTransactionsPaged(s.ctx, []string{s.alice.ID.String()},
		PageRequest{Page: 0, Size: 5, Sort: "dueDate", Desc: true})
	require.NoError(s.T(), err)
	require.Len(s.T(), desc.Items, 5)
	assert.Equal(s.T(), "2024-06-05", desc.Items[0].DueDate.String())
}

func (s *RepositoryTestSuite) TestPageRequestNormalize() {
	p := PageRequest{Page: -3, Size: 0, Sort: "evil; DROP TABLE"}.normalize()
	assert.Equal(s.T(), 0, p.Page)
	assert.Equal(s.T(), 20, p.Size)
	assert.Equal(s.T(), "dueDate", p.Sort)

	big := PageRequest{Size: 5000}.normalize()
	assert.Equal(s.T(), 100, big.Size)
}

func (s *RepositoryTestSuite) TestUserLookupsAndParent() {
	byName, err := s.repo.GetUserByUsername(s.ctx, "alice")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), byName)
	assert.Equal(s.T(), s.alice.ID, byName.ID)

	byEmail, err := s.repo.GetUserByEmail(s.ctx, "bob@example.com")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), byEmail)
	assert.Equal(s.T(), s.bob.ID, byEmail.ID)

	missing, err := s.repo.GetUserByUsername(s.ctx, "nobody")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), missing)

	// Make bob a dependent of alice.
	parent := s.alice.ID
	bob := s.bob
	bob.ParentID = &parent
	require.NoError(s.T(), s.repo.UpdateUser(s.ctx, bob))

	children, err := s.repo.ListUsersByParent(s.ctx, s.alice.ID.String())
	require.NoError(s.T(), err)
	require.Len(s.T(), children, 1)
	assert.Equal(s.T(), s.bob.ID, children[0].ID)
	require.NotNil(s.T(), children[0].ParentID)
	assert.Equal(s.T(), s.alice.ID, *children[0].ParentID)
}

func (s *RepositoryTestSuite) TestCreateUserDuplicateUsername() {
	_, err := s.repo.CreateUser(s.ctx, core.User{
		Username: "alice", Password: "x", Email: "other@example.com",
	})
	assert.Error(s.T(), err, "unique constraint on username must hold")
}

func (s *RepositoryTestSuite) TestCreateUserAssignsID() {
	u, err := s.repo.CreateUser(s.ctx, core.User{
		Username: "carol", Password: "x", Email: "carol@example.com",
	})
	require.NoError(s.T(), err)
	assert.NotEqual(s.T(), uuid.Nil, u.ID)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
