package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "marketorder/internal/adapters/out/postgres"
	"marketorder/internal/adapters/out/postgres/orderrepo"
	"marketorder/internal/core/domain/model/kernel"
	"marketorder/internal/core/domain/model/order"
	"marketorder/internal/core/ports"
	"marketorder/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite exercises the GORM-based Unit of Work and the
// order repository against a real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&orderrepo.OrderDTO{})
	suite.Require().NoError(err)

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

// SetupTest truncates the orders table to prevent test interference.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders").Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")
	suite.NotNil(uow1.OrderRepository())
	suite.NotNil(uow2.OrderRepository())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	// Multiple begin calls are safe
	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Commit(ctx)
	suite.Require().Error(err, "Should error when committing without active transaction")

	err = uow.Rollback(ctx)
	suite.Require().Error(err, "Should error when rolling back without active transaction")
}

// TestUnitOfWork_AddAndGetRoundTrip verifies the aggregate survives persistence
// with full fidelity: money, payment fields, revision state, and the jsonb
// transition log.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_AddAndGetRoundTrip() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := suite.createTestOrder()
	suite.driveToDelivered(testOrder)

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	retrieved, err := suite.factory.Create().OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	suite.True(testOrder.ID().IsEqual(retrieved.ID()))
	suite.True(testOrder.BuyerID().IsEqual(retrieved.BuyerID()))
	suite.True(testOrder.SellerID().IsEqual(retrieved.SellerID()))
	suite.Equal(order.Delivered, retrieved.Status())
	suite.Equal("hold-1", retrieved.PaymentIntentID())
	suite.Equal(order.PaymentConfirmed, retrieved.PaymentStatus())
	suite.True(testOrder.Price().IsEqual(retrieved.Price()))
	suite.Equal("150", retrieved.PlatformFee().Amount().String())
	suite.Equal("850", retrieved.SellerPayout().Amount().String())
	suite.NotNil(retrieved.DeliveredAt())

	log := retrieved.TransitionLog()
	suite.Require().Len(log, 4)
	suite.Equal(order.PendingPayment, log[0].From)
	suite.Equal(order.Paid, log[0].To)
	suite.Equal(order.Delivered, log[3].To)
	suite.Equal(order.ActorSeller, log[3].Actor)
}

// TestUnitOfWork_ConditionalUpdate verifies the write keyed on the prior status:
// the matching writer succeeds, a stale writer gets a conflict.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_ConditionalUpdate() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := suite.createTestOrder()
	suite.driveToDelivered(testOrder)

	err := uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)

	// A valid transition from the observed status succeeds.
	_, err = testOrder.Complete(order.ActorBuyer)
	suite.Require().NoError(err)
	err = uow.OrderRepository().Update(ctx, testOrder, order.Delivered)
	suite.Require().NoError(err)

	retrieved, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Completed, retrieved.Status())
	suite.True(retrieved.PaymentReleased())

	// A writer still expecting the old status loses the race.
	err = uow.OrderRepository().Update(ctx, testOrder, order.Delivered)
	suite.Require().Error(err)
	suite.Require().ErrorIs(err, errs.ErrConflict)
}

// TestUnitOfWork_RollbackDiscardsTransition verifies rollback restores the
// pre-transition row, including the transition log.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsTransition() {
	ctx := context.Background()

	testOrder := suite.createTestOrder()
	suite.driveToDelivered(testOrder)

	setupUow := suite.factory.Create()
	err := setupUow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)
	logLenBefore := len(testOrder.TransitionLog())

	uow := suite.factory.Create()
	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	loaded, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	_, err = loaded.Complete(order.ActorBuyer)
	suite.Require().NoError(err)
	err = uow.OrderRepository().Update(ctx, loaded, order.Delivered)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err)

	retrieved, err := suite.factory.Create().OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Delivered, retrieved.Status())
	suite.False(retrieved.PaymentReleased())
	suite.Len(retrieved.TransitionLog(), logLenBefore)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_GetAllDeliveredBefore() {
	ctx := context.Background()
	repo := suite.factory.Create().OrderRepository()

	staleOrder := suite.createTestOrder()
	suite.driveToDelivered(staleOrder)
	err := repo.Add(ctx, staleOrder)
	suite.Require().NoError(err)

	// Backdate the delivery timestamp past the cutoff.
	err = suite.db.Exec("UPDATE orders SET delivered_at = ? WHERE id = ?",
		time.Now().AddDate(0, 0, -5), staleOrder.ID().Bytes()).Error
	suite.Require().NoError(err)

	freshOrder := suite.createTestOrder()
	suite.driveToDelivered(freshOrder)
	err = repo.Add(ctx, freshOrder)
	suite.Require().NoError(err)

	pendingOrder := suite.createTestOrder()
	err = repo.Add(ctx, pendingOrder)
	suite.Require().NoError(err)

	stale, err := repo.GetAllDeliveredBefore(ctx, time.Now().AddDate(0, 0, -3))
	suite.Require().NoError(err)
	suite.Require().Len(stale, 1)
	suite.True(staleOrder.ID().IsEqual(stale[0].ID()))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_GetAllActiveForUser() {
	ctx := context.Background()
	repo := suite.factory.Create().OrderRepository()

	activeOrder := suite.createTestOrder()
	err := repo.Add(ctx, activeOrder)
	suite.Require().NoError(err)

	completedOrder := suite.createTestOrder()
	suite.driveToDelivered(completedOrder)
	_, err = completedOrder.Complete(order.ActorBuyer)
	suite.Require().NoError(err)
	err = repo.Add(ctx, completedOrder)
	suite.Require().NoError(err)

	otherPartiesOrder := suite.createTestOrder()
	err = repo.Add(ctx, otherPartiesOrder)
	suite.Require().NoError(err)

	asBuyer, err := repo.GetAllActiveForUser(ctx, activeOrder.BuyerID())
	suite.Require().NoError(err)
	suite.Require().Len(asBuyer, 1)
	suite.True(activeOrder.ID().IsEqual(asBuyer[0].ID()))

	asSeller, err := repo.GetAllActiveForUser(ctx, activeOrder.SellerID())
	suite.Require().NoError(err)
	suite.Require().Len(asSeller, 1)

	asStranger, err := repo.GetAllActiveForUser(ctx, kernel.NewUUID())
	suite.Require().NoError(err)
	suite.Empty(asStranger)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_GetUnknownOrder() {
	ctx := context.Background()
	repo := suite.factory.Create().OrderRepository()

	_, err := repo.Get(ctx, kernel.NewUUID())
	suite.Require().Error(err)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

// TestUnitOfWork_RepositoryIsolation verifies that transactions opened from
// different unit of work instances do not observe each other's changes.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoryIsolation() {
	ctx := context.Background()

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	order1 := suite.createTestOrder()
	order2 := suite.createTestOrder()

	err := uow1.Begin(ctx)
	suite.Require().NoError(err)
	err = uow2.Begin(ctx)
	suite.Require().NoError(err)

	err = uow1.OrderRepository().Add(ctx, order1)
	suite.Require().NoError(err)
	err = uow2.OrderRepository().Add(ctx, order2)
	suite.Require().NoError(err)

	_, err = uow1.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "UOW1 should see order1")
	_, err = uow1.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "UOW1 should not see order2")

	err = uow1.Commit(ctx)
	suite.Require().NoError(err)
	err = uow2.Rollback(ctx)
	suite.Require().NoError(err)

	newUow := suite.factory.Create()
	_, err = newUow.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "Order1 should persist after commit")
	_, err = newUow.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "Order2 should not persist after rollback")
}

// TestUnitOfWork_WithoutTransaction verifies that repositories work without
// explicit transaction boundaries for immediate operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_WithoutTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := suite.createTestOrder()

	err := uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)

	retrieved, err := suite.factory.Create().OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.True(testOrder.ID().IsEqual(retrieved.ID()))
}

// createTestOrder creates a valid 1000 USD order in pending_payment status with
// a payment hold attached.
func (suite *UnitOfWorkIntegrationTestSuite) createTestOrder() *order.Order {
	price, err := kernel.NewMoney(decimal.NewFromInt(1000), "USD")
	suite.Require().NoError(err)

	testOrder, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), nil,
		price, "12 Harbor Lane", 7, 2,
	)
	suite.Require().NoError(err)
	suite.Require().NoError(testOrder.AttachPaymentIntent("hold-1"))
	return testOrder
}

// driveToDelivered walks the order through the normal fulfillment path.
func (suite *UnitOfWorkIntegrationTestSuite) driveToDelivered(testOrder *order.Order) {
	_, err := testOrder.MarkPaid("hold-1")
	suite.Require().NoError(err)
	_, err = testOrder.StartProcessing(order.ActorSeller)
	suite.Require().NoError(err)
	_, err = testOrder.StartWork(order.ActorSeller)
	suite.Require().NoError(err)
	_, err = testOrder.Deliver(order.ActorSeller)
	suite.Require().NoError(err)
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
