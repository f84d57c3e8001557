package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"simplewallet/internal/core"
	"simplewallet/internal/storage"
)

// ServiceTestSuite exercises the use cases end to end against an
// in-memory database, with two unrelated users to probe the ownership
// boundaries.
type ServiceTestSuite struct {
	suite.Suite
	repo *storage.Repository
	ctx  context.Context

	accounts     *AccountService
	categories   *CategoryService
	transactions *TransactionService
	loans        *LoanService
	users        *UserService

	alice core.User
	bob   core.User

	aliceAcc AccountResponse
	aliceCat CategoryResponse
	bobAcc   AccountResponse
	bobCat   CategoryResponse
}

func (s *ServiceTestSuite) SetupTest() {
	repo, err := storage.NewRepository(":memory:")
	require.NoError(s.T(), err)
	s.repo = repo
	s.ctx = context.Background()

	s.accounts = NewAccountService(repo)
	s.categories = NewCategoryService(repo)
	s.transactions = NewTransactionService(repo, nil)
	s.loans = NewLoanService(s.transactions)
	s.users = NewUserService(repo, func(p string) (string, error) {
		return "hashed:" + p, nil
	})

	s.alice, err = repo.CreateUser(s.ctx, core.User{
		Username: "alice", Password: "$2a$10$hash", Email: "alice@example.com",
	})
	require.NoError(s.T(), err)
	s.bob, err = repo.CreateUser(s.ctx, core.User{
		Username: "bob", Password: "$2a$10$hash", Email: "bob@example.com",
	})
	require.NoError(s.T(), err)

	s.aliceAcc = s.mustAccount(s.alice.ID.String(), "alice checking")
	s.aliceCat = s.mustCategory(s.alice.ID.String(), "groceries")
	s.bobAcc = s.mustAccount(s.bob.ID.String(), "bob checking")
	s.bobCat = s.mustCategory(s.bob.ID.String(), "rent")
}

func (s *ServiceTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func (s *ServiceTestSuite) mustAccount(userID, description string) AccountResponse {
	acc, err := s.accounts.Create(s.ctx, AccountRequest{
		Description: description,
		Balance:     decimal.RequireFromString("100.00"),
		Credit:      decimal.Zero,
		DueDate:     10,
	}, userID)
	require.NoError(s.T(), err)
	return *acc
}

func (s *ServiceTestSuite) mustCategory(userID, label string) CategoryResponse {
	cat, err := s.categories.Create(s.ctx, CategoryRequest{
		Category: label, Type: int(core.Debit), Color: "#336699",
	}, userID)
	require.NoError(s.T(), err)
	return *cat
}

func (s *ServiceTestSuite) txRequest(accountID, categoryID int64) TransactionRequest {
	return TransactionRequest{
		DueDate:     core.NewDate(2024, 5, 15),
		Description: "weekly shop",
		Amount:      decimal.RequireFromString("42.50"),
		Type:        int(core.Debit),
		AccountID:   accountID,
		CategoryID:  categoryID,
	}
}

func (s *ServiceTestSuite) TestCreateTransaction() {
	resp, err := s.transactions.Create(s.ctx, s.txRequest(s.aliceAcc.ID, s.aliceCat.ID), s.alice.ID.String())
	require.NoError(s.T(), err)
	assert.NotZero(s.T(), resp.ID)
	assert.Equal(s.T(), "alice checking", resp.Account)
	assert.Equal(s.T(), "groceries", resp.Category)
	assert.Equal(s.T(), "alice", resp.Username)
	assert.Nil(s.T(), resp.EffectiveDate)
}

func (s *ServiceTestSuite) TestCreateRejectsForeignReferences() {
	_, err := s.transactions.Create(s.ctx, s.txRequest(s.bobAcc.ID, s.aliceCat.ID), s.alice.ID.String())
	assert.ErrorIs(s.T(), err, core.ErrAccountNotOwned)

	_, err = s.transactions.Create(s.ctx, s.txRequest(s.aliceAcc.ID, s.bobCat.ID), s.alice.ID.String())
	assert.ErrorIs(s.T(), err, core.ErrCategoryNotOwned)

	// A nonexistent reference fails exactly like a foreign one.
	_, err = s.transactions.Create(s.ctx, s.txRequest(9999, s.aliceCat.ID), s.alice.ID.String())
	assert.ErrorIs(s.T(), err, core.ErrAccountNotOwned)
}

func (s *ServiceTestSuite) TestFindByIDHidesForeignRows() {
	created, err := s.transactions.Create(s.ctx, s.txRequest(s.aliceAcc.ID, s.aliceCat.ID), s.alice.ID.String())
	require.NoError(s.T(), err)

	asBob, err := s.transactions.FindByID(s.ctx, created.ID, s.bob.ID.String())
	require.NoError(s.T(), err)
	assert.Nil(s.T(), asBob, "foreign row must read as missing")

	asAlice, err := s.transactions.FindByID(s.ctx, created.ID, s.alice.ID.String())
	require.NoError(s.T(), err)
	require.NotNil(s.T(), asAlice)
	assert.Equal(s.T(), created.ID, asAlice.ID)
}

func (s *ServiceTestSuite) TestUpdateReGuardsReferences() {
	created, err := s.transactions.Create(s.ctx, s.txRequest(s.aliceAcc.ID, s.aliceCat.ID), s.alice.ID.String())
	require.NoError(s.T(), err)

	req := s.txRequest(s.bobAcc.ID, s.aliceCat.ID)
	_, err = s.transactions.Update(s.ctx, created.ID, req, s.alice.ID.String())
	assert.ErrorIs(s.T(), err, core.ErrAccountNotOwned)

	req = s.txRequest(s.aliceAcc.ID, s.aliceCat.ID)
	req.Description = "rewritten"
	req.Amount = decimal.RequireFromString("99.99")
	updated, err := s.transactions.Update(s.ctx, created.ID, req, s.alice.ID.String())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "rewritten", updated.Description)
	assert.True(s.T(), updated.Amount.Equal(decimal.RequireFromString("99.99")))
}

func (s *ServiceTestSuite) TestUpdateForeignRowIsMissing() {
	created, err := s.transactions.Create(s.ctx, s.txRequest(s.aliceAcc.ID, s.aliceCat.ID), s.alice.ID.String())
	require.NoError(s.T(), err)

	updated, err := s.transactions.Update(s.ctx, created.ID, s.txRequest(s.bobAcc.ID, s.bobCat.ID), s.bob.ID.String())
	require.NoError(s.T(), err)
	assert.Nil(s.T(), updated)
}

func (s *ServiceTestSuite) TestEffectiveOverwrites() {
	created, err := s.transactions.Create(s.ctx, s.txRequest(s.aliceAcc.ID, s.aliceCat.ID), s.alice.ID.String())
	require.NoError(s.T(), err)

	first, err := s.transactions.Effective(s.ctx, created.ID, EffectivationRequest{
		EffectiveDate:   core.NewDate(2024, 5, 16),
		EffectiveAmount: decimal.RequireFromString("40.00"),
	}, s.alice.ID.String())
	require.NoError(s.T(), err)
	require.NotNil(s.T(), first.EffectiveDate)
	assert.Equal(s.T(), "2024-05-16", first.EffectiveDate.String())

	// Effectuating twice simply replaces the previous values.
	second, err := s.transactions.Effective(s.ctx, created.ID, EffectivationRequest{
		EffectiveDate:   core.NewDate(2024, 5, 20),
		EffectiveAmount: decimal.RequireFromString("43.10"),
	}, s.alice.ID.String())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "2024-05-20", second.EffectiveDate.String())
	assert.True(s.T(), second.EffectiveAmount.Equal(decimal.RequireFromString("43.10")))
}

func (s *ServiceTestSuite) TestDeleteTransaction() {
	created, err := s.transactions.Create(s.ctx, s.txRequest(s.aliceAcc.ID, s.aliceCat.ID), s.alice.ID.String())
	require.NoError(s.T(), err)

	removed, err := s.transactions.Delete(s.ctx, created.ID, s.bob.ID.String())
	require.NoError(s.T(), err)
	assert.False(s.T(), removed, "foreign delete must be a no-op")

	removed, err = s.transactions.Delete(s.ctx, created.ID, s.alice.ID.String())
	require.NoError(s.T(), err)
	assert.True(s.T(), removed)

	removed, err = s.transactions.Delete(s.ctx, created.ID, s.alice.ID.String())
	require.NoError(s.T(), err)
	assert.False(s.T(), removed)
}

func (s *ServiceTestSuite) TestInstallmentsOrdinalsAndDates() {
	template := s.txRequest(s.aliceAcc.ID, s.aliceCat.ID)
	template.Description = "tv"
	template.DueDate = core.NewDate(2024, 1, 31)

	series, err := s.transactions.Installments(s.ctx, template, 3, s.alice.ID.String(), 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), series, 3)

	assert.Equal(s.T(), "tv - 1 of 3", series[0].Description)
	assert.Equal(s.T(), "tv - 2 of 3", series[1].Description)
	assert.Equal(s.T(), "tv - 3 of 3", series[2].Description)

	// Day-of-month clamps into shorter months instead of rolling over.
	assert.Equal(s.T(), "2024-01-31", series[0].DueDate.String())
	assert.Equal(s.T(), "2024-02-29", series[1].DueDate.String())
	assert.Equal(s.T(), "2024-03-31", series[2].DueDate.String())
}

func (s *ServiceTestSuite) TestInstallmentsWithCorrelation() {
	template := s.txRequest(s.aliceAcc.ID, s.aliceCat.ID)
	template.Description = "loan payback"

	series, err := s.transactions.Installments(s.ctx, template, 2, s.alice.ID.String(), 77)
	require.NoError(s.T(), err)
	require.Len(s.T(), series, 2)
	assert.Equal(s.T(), "loan payback ID: 77 - 1 of 2", series[0].Description)
	assert.Equal(s.T(), "loan payback ID: 77 - 2 of 2", series[1].Description)
}

func (s *ServiceTestSuite) TestInstallmentsNonPositiveCount() {
	template := s.txRequest(s.aliceAcc.ID, s.aliceCat.ID)
	for _, count := range []int{0, -3} {
		series, err := s.transactions.Installments(s.ctx, template, count, s.alice.ID.String(), 0)
		require.NoError(s.T(), err)
		assert.Empty(s.T(), series)
	}
}

func (s *ServiceTestSuite) TestInstallmentsForeignReferencesFailBeforeFirstWrite() {
	template := s.txRequest(s.bobAcc.ID, s.bobCat.ID)
	series, err := s.transactions.Installments(s.ctx, template, 3, s.alice.ID.String(), 0)
	assert.ErrorIs(s.T(), err, core.ErrAccountNotOwned)
	assert.Empty(s.T(), series)

	page, err := s.transactions.List(s.ctx, s.alice.ID.String(), storage.PageRequest{})
	require.NoError(s.T(), err)
	assert.Zero(s.T(), page.TotalElements)
}

func (s *ServiceTestSuite) TestCreateBatch() {
	req := BatchTransactionRequest{
		TransactionRequest: s.txRequest(s.aliceAcc.ID, s.aliceCat.ID),
		QtdeInstallments:   4,
	}
	series, err := s.transactions.CreateBatch(s.ctx, req, s.alice.ID.String())
	require.NoError(s.T(), err)
	assert.Len(s.T(), series, 4)

	page, err := s.transactions.List(s.ctx, s.alice.ID.String(), storage.PageRequest{})
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 4, page.TotalElements)
}

func (s *ServiceTestSuite) TestCreateLoan() {
	req := LoanRequest{
		Description: "car loan",
		Amount:      decimal.RequireFromString("12000.00"),
		Type:        int(core.Credit),
		DueDate:     core.NewDate(2024, 3, 10),
		AccountID:   s.aliceAcc.ID,
		CategoryID:  s.aliceCat.ID,

		DescriptionLoan:  "car loan payment",
		QtdeInstallments: 3,
		AmountLoan:       decimal.RequireFromString("4100.00"),
		TypeLoan:         int(core.Debit),
		DueDateLoan:      core.NewDate(2024, 4, 10),
		AccountIDLoan:    s.aliceAcc.ID,
		CategoryIDLoan:   s.aliceCat.ID,
	}

	loan, err := s.loans.CreateLoan(s.ctx, req, s.alice.ID.String())
	require.NoError(s.T(), err)
	assert.NotZero(s.T(), loan.ID)
	assert.Equal(s.T(), "car loan", loan.Description)
	require.NotNil(s.T(), loan.EffectiveAmount, "disbursement is effectuated at its own amount")
	assert.True(s.T(), loan.EffectiveAmount.Equal(req.Amount))
	require.Len(s.T(), loan.Installments, 3)
	assert.Equal(s.T(), "2024-04-10", loan.Installments[0].DueDate.String())
	assert.Equal(s.T(), "2024-06-10", loan.Installments[2].DueDate.String())
	assert.True(s.T(), loan.Installments[0].Amount.Equal(req.AmountLoan))

	// One credit plus three debits in the ledger, installments tagged
	// with the credit's id.
	page, err := s.transactions.List(s.ctx, s.alice.ID.String(), storage.PageRequest{Size: 10})
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 4, page.TotalElements)

	want := fmt.Sprintf("car loan payment ID: %d - 1 of 3", loan.ID)
	found := false
	for _, item := range page.Items {
		if item.Description == want {
			found = true
		}
	}
	assert.True(s.T(), found, "installment descriptions must carry the credit id")
}

func (s *ServiceTestSuite) TestFamilyScope() {
	// bob becomes alice's dependent.
	bobID := s.bob.ID.String()
	parent := s.alice.ID.String()
	_, err := s.users.UpdateParent(s.ctx, bobID, &parent)
	require.NoError(s.T(), err)

	_, err = s.transactions.Create(s.ctx, s.txRequest(s.aliceAcc.ID, s.aliceCat.ID), s.alice.ID.String())
	require.NoError(s.T(), err)
	_, err = s.transactions.Create(s.ctx, s.txRequest(s.bobAcc.ID, s.bobCat.ID), bobID)
	require.NoError(s.T(), err)

	own, err := s.transactions.List(s.ctx, parent, storage.PageRequest{})
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 1, own.TotalElements)

	family, err := s.transactions.ListFamily(s.ctx, parent, storage.PageRequest{})
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 2, family.TotalElements)

	// The dependent's family view does not reach upward.
	bobFamily, err := s.transactions.ListFamily(s.ctx, bobID, storage.PageRequest{})
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 1, bobFamily.TotalElements)

	famAccounts, err := s.accounts.FindAllForFamily(s.ctx, parent)
	require.NoError(s.T(), err)
	assert.Len(s.T(), famAccounts, 2)

	famCategories, err := s.categories.FindAllForFamily(s.ctx, parent)
	require.NoError(s.T(), err)
	assert.Len(s.T(), famCategories, 2)
}

func (s *ServiceTestSuite) TestAccountOwnershipBoundary() {
	asBob, err := s.accounts.FindByID(s.ctx, s.aliceAcc.ID, s.bob.ID.String())
	require.NoError(s.T(), err)
	assert.Nil(s.T(), asBob)

	updated, err := s.accounts.Update(s.ctx, s.aliceAcc.ID, AccountRequest{
		Description: "hijacked", Balance: decimal.Zero, Credit: decimal.Zero, DueDate: 1,
	}, s.bob.ID.String())
	require.NoError(s.T(), err)
	assert.Nil(s.T(), updated)

	removed, err := s.accounts.Delete(s.ctx, s.aliceAcc.ID, s.bob.ID.String())
	require.NoError(s.T(), err)
	assert.False(s.T(), removed)

	still, err := s.accounts.FindByID(s.ctx, s.aliceAcc.ID, s.alice.ID.String())
	require.NoError(s.T(), err)
	require.NotNil(s.T(), still)
	assert.Equal(s.T(), "alice checking", still.Description)
}

func (s *ServiceTestSuite) TestCategoryDeleteGuard() {
	_, err := s.transactions.Create(s.ctx, s.txRequest(s.aliceAcc.ID, s.aliceCat.ID), s.alice.ID.String())
	require.NoError(s.T(), err)

	removed, err := s.categories.Delete(s.ctx, s.aliceCat.ID, s.alice.ID.String())
	assert.ErrorIs(s.T(), err, core.ErrCategoryInUse)
	assert.False(s.T(), removed)

	unused := s.mustCategory(s.alice.ID.String(), "one-off")
	removed, err = s.categories.Delete(s.ctx, unused.ID, s.alice.ID.String())
	require.NoError(s.T(), err)
	assert.True(s.T(), removed)
}

func (s *ServiceTestSuite) TestRegisterHashesPassword() {
	created, err := s.users.Register(s.ctx, UserRequest{
		Username: "carol", Password: "pw", Email: "carol@example.com", Name: "Carol",
	})
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), created.ID)

	stored, err := s.repo.GetUserByUsername(s.ctx, "carol")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), stored)
	assert.Equal(s.T(), "hashed:pw", stored.Password)
}

func (s *ServiceTestSuite) TestRegisterValidation() {
	_, err := s.users.Register(s.ctx, UserRequest{Password: "pw", Email: "x@example.com"})
	assert.ErrorIs(s.T(), err, core.ErrEmptyUsername)

	_, err = s.users.Register(s.ctx, UserRequest{Username: "x", Email: "x@example.com"})
	assert.ErrorIs(s.T(), err, core.ErrEmptyPassword)
}

func (s *ServiceTestSuite) TestRegisterHashFailure() {
	failing := NewUserService(s.repo, func(string) (string, error) {
		return "", errors.New("boom")
	})
	_, err := failing.Register(s.ctx, UserRequest{
		Username: "dan", Password: "pw", Email: "dan@example.com",
	})
	assert.Error(s.T(), err)
}

func (s *ServiceTestSuite) TestUpdateParentSelfRejected() {
	id := s.alice.ID.String()
	_, err := s.users.UpdateParent(s.ctx, id, &id)
	assert.ErrorIs(s.T(), err, core.ErrSelfParent)
}

func (s *ServiceTestSuite) TestUpdateParentClear() {
	bobID := s.bob.ID.String()
	parent := s.alice.ID.String()
	linked, err := s.users.UpdateParent(s.ctx, bobID, &parent)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), parent, linked.ParentID)

	cleared, err := s.users.UpdateParent(s.ctx, bobID, nil)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), cleared.ParentID)

	children, err := s.users.Children(s.ctx, parent)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), children)
}

func (s *ServiceTestSuite) TestUpdatePassword() {
	require.NoError(s.T(), s.users.UpdatePassword(s.ctx, s.alice.ID.String(), "newpw"))

	stored, err := s.repo.GetUser(s.ctx, s.alice.ID.String())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "hashed:newpw", stored.Password)

	err = s.users.UpdatePassword(s.ctx, s.alice.ID.String(), "")
	assert.ErrorIs(s.T(), err, core.ErrEmptyPassword)
}

func (s *ServiceTestSuite) TestFindByEmail() {
	found, err := s.users.FindByEmail(s.ctx, "alice@example.com")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), found)
	assert.Equal(s.T(), "alice", found.Username)

	missing, err := s.users.FindByEmail(s.ctx, "nobody@example.com")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), missing)
}

func (s *ServiceTestSuite) TestUpdateProfile() {
	updated, err := s.users.Update(s.ctx, s.alice.ID.String(), "new@example.com", "Alice A")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "new@example.com", updated.Email)
	assert.Equal(s.T(), "Alice A", updated.Name)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
