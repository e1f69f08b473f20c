package jobs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"dealerdir/internal/caching"
	"dealerdir/internal/metrics"
	"dealerdir/internal/models"
	"dealerdir/internal/repositories"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockDealerRepository struct {
	mock.Mock
	repositories.DealerRepository
}

func (m *MockDealerRepository) ImportBatch(ctx context.Context, rows []models.ImportRow) (int, error) {
	args := m.Called(ctx, rows)
	return args.Int(0), args.Error(1)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Open(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockObjectStore) Put(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

type staticSource struct {
	rows [][]string
	err  error
}

func (s *staticSource) Rows(context.Context) ([][]string, error) { return s.rows, s.err }
func (s *staticSource) Name() string                             { return "static" }
func (s *staticSource) Kind() string                             { return "test" }

const dealerCSV = `Dealer Number,Name,DBA,Street,Box,City,State,Zip,County,Phone,Fax,Email,Salesman
1001,Acme Equipment,Acme,1 Main St,,Richmond VA 23220,,,Henrico,804-555-0100,,sales@acme.test,S9
,Nameless Farm Supply
1002,Blue Ridge Tractor
`

type DealerImporterTestSuite struct {
	suite.Suite
	repo     *MockDealerRepository
	tracker  caching.ImportTracker
	metrics  *metrics.Registry
	logs     *observer.ObservedLogs
	importer *DealerImporter
	ctx      context.Context
}

func (suite *DealerImporterTestSuite) SetupTest() {
	core, logs := observer.New(zapcore.InfoLevel)
	suite.repo = new(MockDealerRepository)
	suite.tracker = caching.NewMemoryImportTracker()
	suite.metrics = metrics.Nop()
	suite.logs = logs
	suite.importer = NewDealerImporter(suite.repo, suite.tracker, suite.metrics, zap.New(core), ImporterOptions{HeaderRows: 1})
	suite.ctx = context.Background()

	clock := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	suite.importer.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
}

func (suite *DealerImporterTestSuite) TearDownTest() {
	suite.repo.AssertExpectations(suite.T())
}

func (suite *DealerImporterTestSuite) TestRunParsesSkipsAndWrites() {
	suite.repo.On("ImportBatch", suite.ctx, mock.MatchedBy(func(rows []models.ImportRow) bool {
		return len(rows) == 2 &&
			rows[0].DealerNumber == "1001" &&
			rows[0].Address.City == "Richmond VA 23220" &&
			rows[0].Address.County == "Henrico" &&
			rows[0].Contact.MainEmail == "sales@acme.test" &&
			rows[0].SalesmanCode == "S9" &&
			rows[1].DealerNumber == "1002" &&
			rows[1].DealershipName == "Blue Ridge Tractor" &&
			rows[1].SalesmanCode == ""
	})).Return(2, nil)

	result, err := suite.importer.Run(suite.ctx, NewCSVSource("dealers.csv", strings.NewReader(dealerCSV)))

	suite.Require().NoError(err)
	suite.Equal(2, result.RowsProcessed)
	suite.Equal(1, result.Skipped)
	suite.Equal("upload:dealers.csv", result.Source)
	suite.Empty(result.Error)
	suite.NotEqual(uuid.Nil, result.RunID)
	suite.Equal(time.Second, result.FinishedAt.Sub(result.StartedAt))

	last, err := suite.tracker.LastResult(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(result.RunID, last.RunID)

	suite.Equal(float64(1), testutil.ToFloat64(suite.metrics.ImportRunsTotal.WithLabelValues("upload", "success")))
	suite.Equal(float64(2), testutil.ToFloat64(suite.metrics.ImportRowsProcessed))
	suite.Equal(float64(1), testutil.ToFloat64(suite.metrics.ImportRowsSkipped))
	suite.Len(suite.logs.FilterMessage("dealer import finished").All(), 1)
}

func (suite *DealerImporterTestSuite) TestRunReleasesLockAfterRun() {
	suite.repo.On("ImportBatch", suite.ctx, mock.Anything).Return(0, nil).Twice()
	source := &staticSource{rows: [][]string{{"header"}}}

	_, err := suite.importer.Run(suite.ctx, source)
	suite.NoError(err)
	_, err = suite.importer.Run(suite.ctx, source)
	suite.NoError(err)
}

func (suite *DealerImporterTestSuite) TestRunHeaderOnlyWritesEmptyBatch() {
	suite.repo.On("ImportBatch", suite.ctx, []models.ImportRow{}).Return(0, nil)

	result, err := suite.importer.Run(suite.ctx, &staticSource{rows: [][]string{{"Dealer Number", "Name"}}})

	suite.NoError(err)
	suite.Zero(result.RowsProcessed)
	suite.Zero(result.Skipped)
}

func (suite *DealerImporterTestSuite) TestRunBatchFailureReportsZeroRows() {
	storageErr := &repositories.StorageError{Op: "import dealer 1002", Code: "23503", Err: errors.New("fk violation")}
	suite.repo.On("ImportBatch", suite.ctx, mock.Anything).Return(0, storageErr)

	result, err := suite.importer.Run(suite.ctx, NewCSVSource("dealers.csv", strings.NewReader(dealerCSV)))

	suite.ErrorIs(err, storageErr)
	suite.Require().NotNil(result)
	suite.Zero(result.RowsProcessed)
	suite.Equal(1, result.Skipped)
	suite.Contains(result.Error, "import dealer 1002")
	suite.Equal(float64(1), testutil.ToFloat64(suite.metrics.ImportRunsTotal.WithLabelValues("upload", "failed")))
	suite.Equal(float64(0), testutil.ToFloat64(suite.metrics.ImportRowsProcessed))

	last, err := suite.tracker.LastResult(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(result.Error, last.Error)
}

func (suite *DealerImporterTestSuite) TestRunSourceFailure() {
	result, err := suite.importer.Run(suite.ctx, &staticSource{err: errors.New("sheet unavailable")})

	suite.EqualError(err, "sheet unavailable")
	suite.Equal("sheet unavailable", result.Error)
	suite.repo.AssertNotCalled(suite.T(), "ImportBatch", mock.Anything, mock.Anything)
}

func (suite *DealerImporterTestSuite) TestRunRejectsConcurrentImport() {
	suite.Require().NoError(suite.tracker.Acquire(suite.ctx, uuid.New(), time.Minute))

	result, err := suite.importer.Run(suite.ctx, &staticSource{})

	suite.Nil(result)
	suite.ErrorIs(err, caching.ErrImportInProgress)
	suite.Equal(float64(1), testutil.ToFloat64(suite.metrics.ImportRunsTotal.WithLabelValues("test", "busy")))
}

func (suite *DealerImporterTestSuite) TestRunDefaultWithoutSource() {
	suite.False(suite.importer.HasDefaultSource())

	_, err := suite.importer.RunDefault(suite.ctx)

	suite.ErrorIs(err, ErrNoImportSource)
}

func (suite *DealerImporterTestSuite) TestRunDefaultUsesConfiguredSource() {
	suite.importer.SetDefaultSource(&staticSource{rows: [][]string{{"hdr"}, {"3003", "Tidewater Ag"}}})
	suite.repo.On("ImportBatch", suite.ctx, mock.MatchedBy(func(rows []models.ImportRow) bool {
		return len(rows) == 1 && rows[0].DealerNumber == "3003"
	})).Return(1, nil)

	result, err := suite.importer.RunDefault(suite.ctx)

	suite.NoError(err)
	suite.Equal("static", result.Source)
	suite.Equal(1, result.RowsProcessed)
}

func (suite *DealerImporterTestSuite) TestRunUploadArchivesFile() {
	store := new(MockObjectStore)
	suite.importer.opts.ArchiveBucket = "dealer-imports"
	suite.importer.SetArchive(store)
	data := []byte("hdr\n4004,Piedmont Farm\n")

	store.On("Put", suite.ctx, "dealer-imports", "uploads/20260302T090001Z-dealers.csv", mock.Anything, int64(len(data)), "text/csv").Return(nil)
	suite.repo.On("ImportBatch", suite.ctx, mock.Anything).Return(1, nil)

	result, err := suite.importer.RunUpload(suite.ctx, "../tmp/dealers.csv", data)

	suite.NoError(err)
	suite.Equal(1, result.RowsProcessed)
	store.AssertExpectations(suite.T())
}

func (suite *DealerImporterTestSuite) TestRunUploadArchiveFailureStillImports() {
	store := new(MockObjectStore)
	suite.importer.opts.ArchiveBucket = "dealer-imports"
	suite.importer.SetArchive(store)

	store.On("Put", suite.ctx, "dealer-imports", mock.Anything, mock.Anything, mock.Anything, "text/csv").Return(errors.New("bucket offline"))
	suite.repo.On("ImportBatch", suite.ctx, mock.Anything).Return(1, nil)

	result, err := suite.importer.RunUpload(suite.ctx, "dealers.csv", []byte("hdr\n4004,Piedmont Farm\n"))

	suite.NoError(err)
	suite.Equal(1, result.RowsProcessed)
	suite.Len(suite.logs.FilterMessage("failed to archive uploaded import file").All(), 1)
}

func TestDealerImporterTestSuite(t *testing.T) {
	suite.Run(t, new(DealerImporterTestSuite))
}
