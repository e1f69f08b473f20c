package integration

import (
	"context"
	"strings"
	"sync"
	"testing"

	"dealerdir/internal/caching"
	"dealerdir/internal/jobs"
	"dealerdir/internal/metrics"
	"dealerdir/internal/models"
	"dealerdir/internal/repositories"
	"dealerdir/internal/services"
	"dealerdir/testhelpers"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type DealerDirectoryTestSuite struct {
	suite.Suite
	db       *testhelpers.TestDB
	repo     repositories.DealerRepository
	service  services.DealerService
	importer *jobs.DealerImporter
	ctx      context.Context
}

func (suite *DealerDirectoryTestSuite) SetupSuite() {
	suite.db = testhelpers.SetupTestDB(suite.T())
	suite.repo = repositories.NewDealerRepository(suite.db.Pool)
	suite.service = services.NewDealerService(suite.repo, zap.NewNop())
	suite.importer = jobs.NewDealerImporter(suite.repo, caching.NewMemoryImportTracker(), metrics.Nop(), zap.NewNop(),
		jobs.ImporterOptions{HeaderRows: 1})
	suite.ctx = context.Background()
}

func (suite *DealerDirectoryTestSuite) TearDownSuite() {
	if suite.db != nil {
		suite.db.Cleanup()
	}
}

func (suite *DealerDirectoryTestSuite) SetupTest() {
	testhelpers.ResetDealerTables(suite.T(), suite.db)
	testhelpers.SeedSalesman(suite.T(), suite.db, "S1", "John Doe")
	testhelpers.SeedSalesman(suite.T(), suite.db, "S2", "Jane Roe")
}

func (suite *DealerDirectoryTestSuite) TestDetailIsFullyShapedForBareDealer() {
	testhelpers.SeedDealer(suite.T(), suite.db, "2002", "Blue Ridge Tractor")

	detail, err := suite.service.Get(suite.ctx, "2002")

	suite.Require().NoError(err)
	suite.Equal(models.DealerDetail{
		DealerNumber:   "2002",
		DealershipName: "Blue Ridge Tractor",
		Lines:          []models.ProductLine{},
	}, *detail)
}

func (suite *DealerDirectoryTestSuite) TestUnknownDealerIsNotFound() {
	_, err := suite.service.Get(suite.ctx, "9999")
	suite.ErrorIs(err, repositories.ErrDealerNotFound)

	_, err = suite.service.Update(suite.ctx, "9999", &models.DealerDetail{DealershipName: "Ghost"})
	suite.ErrorIs(err, repositories.ErrDealerNotFound)
}

func (suite *DealerDirectoryTestSuite) TestUpdateThenGet() {
	testhelpers.SeedDealer(suite.T(), suite.db, "1001", "Acme")
	testhelpers.SeedProductLine(suite.T(), suite.db, "1001", "Old Line", "O-1")

	payload := &models.DealerDetail{
		DealershipName: "Acme Equipment",
		DBA:            "Acme",
		Address:        models.Address{StreetAddress: "1 Main St", City: "Richmond", State: "VA", ZipCode: "23220"},
		Contact:        models.Contact{MainPhone: "804-555-0100", MainEmail: "sales@acme.test"},
		Lines: []models.ProductLine{
			{LineName: "Kubota", AccountNumber: "K-1"},
			{LineName: "Stihl", AccountNumber: "ST-9"},
		},
		Salesman: models.Salesman{SalesmanCode: "S2"},
	}

	updated, err := suite.service.Update(suite.ctx, "1001", payload)
	suite.Require().NoError(err)

	got, err := suite.service.Get(suite.ctx, "1001")
	suite.Require().NoError(err)
	suite.Equal(updated, got)
	suite.Equal("Acme Equipment", got.DealershipName)
	suite.Equal("Richmond", got.Address.City)
	suite.Equal("S2", got.SalesmanCode)
	suite.Equal(models.Salesman{SalesmanCode: "S2", SalesmanName: "Jane Roe"}, got.Salesman)
	suite.Equal(payload.Lines, got.Lines)
}

func (suite *DealerDirectoryTestSuite) TestUpdateIsIdempotentAndRoundTrips() {
	testhelpers.SeedDealer(suite.T(), suite.db, "1001", "Acme Equipment")
	testhelpers.SeedProductLine(suite.T(), suite.db, "1001", "Kubota", "K-1")

	before, err := suite.service.Get(suite.ctx, "1001")
	suite.Require().NoError(err)

	first, err := suite.service.Update(suite.ctx, "1001", before)
	suite.Require().NoError(err)
	second, err := suite.service.Update(suite.ctx, "1001", first)
	suite.Require().NoError(err)

	suite.Equal(before, first)
	suite.Equal(first, second)
}

func (suite *DealerDirectoryTestSuite) TestUpdateWithEmptyLinesClearsLines() {
	testhelpers.SeedDealer(suite.T(), suite.db, "1001", "Acme Equipment")
	testhelpers.SeedProductLine(suite.T(), suite.db, "1001", "Kubota", "K-1")

	updated, err := suite.service.Update(suite.ctx, "1001", &models.DealerDetail{
		DealershipName: "Acme Equipment",
		Lines:          []models.ProductLine{},
	})

	suite.Require().NoError(err)
	suite.Empty(updated.Lines)
	suite.NotNil(updated.Lines)
}

func (suite *DealerDirectoryTestSuite) TestImportLastWriteWinsAndKeepsLines() {
	testhelpers.SeedDealer(suite.T(), suite.db, "1001", "Acme")
	testhelpers.SeedProductLine(suite.T(), suite.db, "1001", "Kubota", "K-1")

	csv := strings.Join([]string{
		"Dealer Number,Name,DBA,Street,Box,City,State,Zip,County,Phone,Fax,Email,Salesman",
		"1001,Acme First,,1 Main St,,Richmond,VA,23220,,,,,S1",
		"3003,Tidewater Ag,,,,Norfolk,VA,,,,,,",
		"1001,Acme Second,AE,2 Oak Ave,,Richmond VA 23221,,,,,,,S2",
	}, "\n")

	result, err := suite.importer.RunUpload(suite.ctx, "dealers.csv", []byte(csv))
	suite.Require().NoError(err)
	suite.Equal(3, result.RowsProcessed)

	detail, err := suite.service.Get(suite.ctx, "1001")
	suite.Require().NoError(err)
	suite.Equal("Acme Second", detail.DealershipName)
	suite.Equal("2 Oak Ave", detail.Address.StreetAddress)
	suite.Equal("S2", detail.SalesmanCode)
	suite.Equal([]models.ProductLine{{LineName: "Kubota", AccountNumber: "K-1"}}, detail.Lines)

	tidewater, err := suite.service.Get(suite.ctx, "3003")
	suite.Require().NoError(err)
	suite.Empty(tidewater.SalesmanCode)
}

func (suite *DealerDirectoryTestSuite) TestImportedDealerRoundTripsThroughUpdate() {
	csv := "hdr\n6006,,,,,,,,,,,,\n7007,Acme,,1 Main St,,Richmond,VA,,,,,n/a,S1\n"

	_, err := suite.importer.RunUpload(suite.ctx, "dealers.csv", []byte(csv))
	suite.Require().NoError(err)

	for _, dealerNumber := range []string{"6006", "7007"} {
		before, err := suite.service.Get(suite.ctx, dealerNumber)
		suite.Require().NoError(err)

		_, err = suite.service.Update(suite.ctx, dealerNumber, before)
		suite.Require().NoError(err, "dealer %s", dealerNumber)

		after, err := suite.service.Get(suite.ctx, dealerNumber)
		suite.Require().NoError(err)
		suite.Equal(before, after)
	}
}

func (suite *DealerDirectoryTestSuite) TestConcurrentUpdatesLastCommitWins() {
	testhelpers.SeedDealer(suite.T(), suite.db, "1001", "Acme")

	// There is no per-dealer lock: both updates commit and the later one
	// wins, but each is applied whole, never interleaved.
	payloads := []*models.DealerDetail{
		{
			DealershipName: "Acme North",
			Address:        models.Address{StreetAddress: "1 Main St", City: "Richmond", State: "VA"},
			Contact:        models.Contact{MainPhone: "804-555-0100"},
			Lines:          []models.ProductLine{{LineName: "Kubota", AccountNumber: "K-1"}},
			Salesman:       models.Salesman{SalesmanCode: "S1"},
		},
		{
			DealershipName: "Acme South",
			Address:        models.Address{StreetAddress: "9 Oak Ave", City: "Raleigh", State: "NC"},
			Contact:        models.Contact{MainPhone: "919-555-0199"},
			Lines:          []models.ProductLine{{LineName: "Stihl", AccountNumber: "ST-9"}, {LineName: "Volvo", AccountNumber: "V100"}},
			Salesman:       models.Salesman{SalesmanCode: "S2"},
		},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(payloads))
	for i, payload := range payloads {
		wg.Add(1)
		go func(i int, payload models.DealerDetail) {
			defer wg.Done()
			_, errs[i] = suite.service.Update(suite.ctx, "1001", &payload)
		}(i, *payload)
	}
	wg.Wait()
	for _, err := range errs {
		suite.Require().NoError(err)
	}

	got, err := suite.service.Get(suite.ctx, "1001")
	suite.Require().NoError(err)

	matched := false
	for _, p := range payloads {
		if got.DealershipName == p.DealershipName {
			matched = true
			suite.Equal(p.Address, got.Address)
			suite.Equal(p.Contact, got.Contact)
			suite.Equal(p.Lines, got.Lines)
			suite.Equal(p.Salesman.SalesmanCode, got.SalesmanCode)
		}
	}
	suite.True(matched, "final record %q matches neither update", got.DealershipName)
}

func (suite *DealerDirectoryTestSuite) TestImportUnknownSalesmanRollsBack() {
	csv := "hdr\n4004,Piedmont Farm,,,,,,,,,,,S1\n5005,Bad Salesman,,,,,,,,,,,ZZ\n"

	result, err := suite.importer.RunUpload(suite.ctx, "dealers.csv", []byte(csv))

	var storageErr *repositories.StorageError
	suite.Require().ErrorAs(err, &storageErr)
	suite.Equal("23503", storageErr.Code)
	suite.Zero(result.RowsProcessed)

	_, err = suite.service.Get(suite.ctx, "4004")
	suite.ErrorIs(err, repositories.ErrDealerNotFound)
}

func (suite *DealerDirectoryTestSuite) TestListIsSortedAndDistinct() {
	testhelpers.SeedDealer(suite.T(), suite.db, "1002", "Zephyr Implements")
	testhelpers.SeedDealer(suite.T(), suite.db, "1001", "Acme Equipment")
	testhelpers.SeedDealer(suite.T(), suite.db, "1003", "Meadow Supply")

	dealers, err := suite.service.List(suite.ctx, models.DealerListFilter{})

	suite.Require().NoError(err)
	suite.Require().Len(dealers, 3)
	suite.Equal("Acme Equipment", dealers[0].DealershipName)
	suite.Equal("Meadow Supply", dealers[1].DealershipName)
	suite.Equal("Zephyr Implements", dealers[2].DealershipName)
}

func (suite *DealerDirectoryTestSuite) TestCoordinatesRecoverLocation() {
	csv := "hdr\n1001,Acme Equipment,,1 Main St,,Richmond VA 23220,,,Henrico\n2002,No Street,,,,Raleigh,NC,27601\n3003,Asheville Only,,9 Elm St,,Asheville,,\n"
	_, err := suite.importer.RunUpload(suite.ctx, "dealers.csv", []byte(csv))
	suite.Require().NoError(err)

	locations, err := suite.service.Coordinates(suite.ctx)

	suite.Require().NoError(err)
	suite.Require().Len(locations, 1)
	suite.Equal("Richmond", locations[0].City)
	suite.Equal("VA", locations[0].State)
	suite.Equal("23220", locations[0].ZipCode)
}

func (suite *DealerDirectoryTestSuite) TestSalesmen() {
	salesmen, err := suite.service.Salesmen(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal([]*models.Salesman{
		{SalesmanCode: "S2", SalesmanName: "Jane Roe"},
		{SalesmanCode: "S1", SalesmanName: "John Doe"},
	}, salesmen)
}

func TestDealerDirectoryTestSuite(t *testing.T) {
	suite.Run(t, new(DealerDirectoryTestSuite))
}
