package datasource

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

// countingDataSource counts Load calls on the wrapped source.
type countingDataSource struct {
	DataSource
	loads  int
	closed bool
}

func (c *countingDataSource) Load(path string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.PriceSeries, error) {
	c.loads++

	return c.DataSource.Load(path, start, end)
}

func (c *countingDataSource) Close() error {
	c.closed = true

	return nil
}

// blockingDataSource holds every Load until release is closed and records the peak
// number of loads running at once.
type blockingDataSource struct {
	DataSource
	release chan struct{}
	started chan string
	active  atomic.Int32
	peak    atomic.Int32
	loads   atomic.Int32
}

func (b *blockingDataSource) Load(path string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.PriceSeries, error) {
	b.loads.Add(1)

	n := b.active.Add(1)
	for {
		peak := b.peak.Load()
		if n <= peak || b.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	b.started <- path
	<-b.release
	b.active.Add(-1)

	return b.DataSource.Load(path, start, end)
}

type CachedDataSourceTestSuite struct {
	suite.Suite
	underlying *countingDataSource
	cached     *CachedDataSource
}

func TestCachedDataSourceSuite(t *testing.T) {
	suite.Run(t, new(CachedDataSourceTestSuite))
}

func (suite *CachedDataSourceTestSuite) SetupTest() {
	bars := []types.PriceBar{
		{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: 1},
		{Time: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Price: 2},
	}

	series, err := types.NewPriceSeries("AAPL", bars)
	suite.Require().NoError(err)

	suite.underlying = &countingDataSource{DataSource: NewInMemoryDataSource(map[string]types.PriceSeries{"aapl": series})}
	suite.cached = NewCachedDataSource(suite.underlying)
}

func (suite *CachedDataSourceTestSuite) TestLoadIsCached() {
	for i := 0; i < 3; i++ {
		series, err := suite.cached.Load("aapl", optional.None[time.Time](), optional.None[time.Time]())
		suite.Require().NoError(err)
		suite.Equal(2, series.Len())
	}

	suite.Equal(1, suite.underlying.loads)

	_, err := suite.cached.Load("aapl", optional.Some(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(2, suite.underlying.loads)
}

func (suite *CachedDataSourceTestSuite) TestErrorsAreCached() {
	_, err := suite.cached.Load("missing", optional.None[time.Time](), optional.None[time.Time]())
	suite.Error(err)

	_, err = suite.cached.Load("missing", optional.None[time.Time](), optional.None[time.Time]())
	suite.Error(err)
	suite.Equal(1, suite.underlying.loads)
}

func (suite *CachedDataSourceTestSuite) TestClearCache() {
	_, err := suite.cached.Load("aapl", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)

	suite.cached.ClearCache()

	_, err = suite.cached.Load("aapl", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(2, suite.underlying.loads)
}

func (suite *CachedDataSourceTestSuite) TestCloseClosesUnderlying() {
	suite.NoError(suite.cached.Close())
	suite.True(suite.underlying.closed)
}

func (suite *CachedDataSourceTestSuite) TestDifferentPathsLoadInParallel() {
	series, err := types.NewPriceSeries("MSFT", []types.PriceBar{{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: 3}})
	suite.Require().NoError(err)

	underlying := &blockingDataSource{
		DataSource: NewInMemoryDataSource(map[string]types.PriceSeries{"aapl": series, "msft": series}),
		release:    make(chan struct{}),
		started:    make(chan string, 2),
	}
	cached := NewCachedDataSource(underlying)

	var wg sync.WaitGroup
	for _, path := range []string{"aapl", "msft"} {
		wg.Add(1)

		go func(path string) {
			defer wg.Done()

			_, err := cached.Load(path, optional.None[time.Time](), optional.None[time.Time]())
			suite.NoError(err)
		}(path)
	}

	// both loads must be running before either is released
	for i := 0; i < 2; i++ {
		select {
		case <-underlying.started:
		case <-time.After(2 * time.Second):
			close(underlying.release)
			wg.Wait()
			suite.FailNow("loads of different paths did not run concurrently")
		}
	}

	close(underlying.release)
	wg.Wait()

	suite.Equal(int32(2), underlying.peak.Load())
	suite.Equal(int32(2), underlying.loads.Load())
}

func (suite *CachedDataSourceTestSuite) TestSamePathLoadsOnce() {
	underlying := &blockingDataSource{
		DataSource: suite.underlying.DataSource,
		release:    make(chan struct{}),
		started:    make(chan string, 8),
	}
	cached := NewCachedDataSource(underlying)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			series, err := cached.Load("aapl", optional.None[time.Time](), optional.None[time.Time]())
			suite.NoError(err)
			suite.Equal(2, series.Len())
		}()
	}

	select {
	case <-underlying.started:
	case <-time.After(2 * time.Second):
		suite.FailNow("load did not start")
	}

	close(underlying.release)
	wg.Wait()

	suite.Equal(int32(1), underlying.loads.Load())
}
