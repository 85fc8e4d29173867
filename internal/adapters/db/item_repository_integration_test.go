//go:build integration
// +build integration

package db_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/inventory-tracker/internal/adapters/db"
	"github.com/ammerola/inventory-tracker/internal/core/domain"
	"github.com/ammerola/inventory-tracker/test/helpers"
)

type ItemRepositorySuite struct {
	suite.Suite
	testDB *helpers.TestDB
	repo   *db.ItemRepository
	ctx    context.Context
}

func (s *ItemRepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.repo = db.NewItemRepository(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *ItemRepositorySuite) SetupTest() {
	helpers.TruncateItems(s.T(), s.testDB.PgxPool)
}

func (s *ItemRepositorySuite) TestStorageLimitsRoundTripExactly() {
	item := helpers.CreateTestItem(func(i *domain.Item) {
		i.Price = decimal.RequireFromString("999999999999999.9999")
		i.QuantityInStock = domain.MaxQuantity
	})
	s.Require().NoError(item.Validate())

	_, err := s.repo.Insert(s.ctx, item)
	s.Require().NoError(err)

	saved, err := s.repo.FindByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Require().NotNil(saved)
	s.True(item.Price.Equal(saved.Price), "price %s stored as %s", item.Price, saved.Price)
	s.Equal(domain.MaxQuantity, saved.QuantityInStock)
}

func (s *ItemRepositorySuite) TestHealthReportsPool() {
	stats, err := s.testDB.Database.Health(s.ctx)
	s.Require().NoError(err)
	s.Positive(stats.Total)
	s.EqualValues(5, stats.Max)
}

func (s *ItemRepositorySuite) TestInsertGeneratesID() {
	item := helpers.CreateTestItem()

	inserted, err := s.repo.Insert(s.ctx, item)
	s.Require().NoError(err)
	s.True(inserted)
	s.Positive(item.ID)

	saved, err := s.repo.FindByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Require().NotNil(saved)
	s.Equal(item.Name, saved.Name)
	s.True(item.Price.Equal(saved.Price))
	s.Equal(item.QuantityInStock, saved.QuantityInStock)
}

func (s *ItemRepositorySuite) TestInsertCollisionIsIgnored() {
	original := helpers.CreateTestItem(func(i *domain.Item) {
		i.ID = 40
		i.Name = "Original"
	})
	inserted, err := s.repo.Insert(s.ctx, original)
	s.Require().NoError(err)
	s.True(inserted)

	clash := helpers.CreateTestItem(func(i *domain.Item) {
		i.ID = 40
		i.Name = "Clash"
	})
	inserted, err = s.repo.Insert(s.ctx, clash)
	s.Require().NoError(err)
	s.False(inserted)

	saved, err := s.repo.FindByID(s.ctx, 40)
	s.Require().NoError(err)
	s.Equal("Original", saved.Name)
}

func (s *ItemRepositorySuite) TestExplicitIDAdvancesGeneratedIDs() {
	explicit := helpers.CreateTestItem(func(i *domain.Item) { i.ID = 100 })
	_, err := s.repo.Insert(s.ctx, explicit)
	s.Require().NoError(err)

	generated := helpers.CreateTestItem()
	_, err = s.repo.Insert(s.ctx, generated)
	s.Require().NoError(err)
	s.Greater(generated.ID, int64(100))
}

func (s *ItemRepositorySuite) TestIDsAreNotReusedAfterDelete() {
	first := helpers.CreateTestItem()
	_, err := s.repo.Insert(s.ctx, first)
	s.Require().NoError(err)

	deleted, err := s.repo.Delete(s.ctx, first.ID)
	s.Require().NoError(err)
	s.True(deleted)

	second := helpers.CreateTestItem()
	_, err = s.repo.Insert(s.ctx, second)
	s.Require().NoError(err)
	s.NotEqual(first.ID, second.ID)
}

func (s *ItemRepositorySuite) TestUpdateAndDeleteReportMisses() {
	updated, err := s.repo.Update(s.ctx, domain.Item{ID: 999, Name: "Ghost", Price: decimal.Zero})
	s.Require().NoError(err)
	s.False(updated)

	deleted, err := s.repo.Delete(s.ctx, 999)
	s.Require().NoError(err)
	s.False(deleted)

	missing, err := s.repo.FindByID(s.ctx, 999)
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *ItemRepositorySuite) TestUpdateReplacesAllFields() {
	item := helpers.CreateTestItem()
	_, err := s.repo.Insert(s.ctx, item)
	s.Require().NoError(err)

	next := domain.Item{
		ID:              item.ID,
		Name:            "Replaced",
		Price:           decimal.RequireFromString("19.9900"),
		QuantityInStock: 0,
	}
	updated, err := s.repo.Update(s.ctx, next)
	s.Require().NoError(err)
	s.True(updated)

	saved, err := s.repo.FindByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.True(next.Equal(*saved))
}

func (s *ItemRepositorySuite) TestFindAllOrdersByteWise() {
	for _, name := range []string{"banana", "Apple", "apple", "Banana"} {
		_, err := s.repo.Insert(s.ctx, helpers.CreateTestItem(func(i *domain.Item) { i.Name = name }))
		s.Require().NoError(err)
	}

	items, err := s.repo.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Apple", "Banana", "apple", "banana"}, helpers.ItemNames(items))
}

func (s *ItemRepositorySuite) TestFindAllEmpty() {
	items, err := s.repo.FindAll(s.ctx)
	s.Require().NoError(err)
	s.NotNil(items)
	s.Empty(items)
}

func (s *ItemRepositorySuite) TestCheckConstraintsSurfaceAsStorageErrors() {
	_, err := s.testDB.Database.Exec(s.ctx,
		"INSERT INTO item (name, price, quantity) VALUES ('Bad', -1, 0)")
	s.Error(err)

	_, err = s.repo.Insert(s.ctx, &domain.Item{Name: "", Price: decimal.Zero})
	s.ErrorIs(err, domain.ErrStorage)
}

func (s *ItemRepositorySuite) TestChangeListenerForwardsNotifications() {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	sink := &recordingPublisher{}
	listener := db.NewChangeListener(s.testDB.Database, sink, helpers.TestLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = listener.Run(ctx)
	}()

	helpers.AssertEventuallyWithTimeout(s.T(), func() bool { return sink.contains(0) },
		5*time.Second, "listener should publish a full refresh on connect")

	item := helpers.CreateTestItem()
	_, err := s.repo.Insert(s.ctx, item)
	s.Require().NoError(err)

	helpers.AssertEventuallyWithTimeout(s.T(), func() bool { return sink.contains(item.ID) },
		5*time.Second, "insert should be forwarded")

	cancel()
	<-done
}

func TestItemRepositorySuite(t *testing.T) {
	suite.Run(t, new(ItemRepositorySuite))
}

type recordingPublisher struct {
	mu  sync.Mutex
	ids []int64
}

func (p *recordingPublisher) Publish(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, id)
}

func (p *recordingPublisher) contains(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, seen := range p.ids {
		if seen == id {
			return true
		}
	}
	return false
}
