package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/scorestats/internal/adapters/repository"
	"github.com/okian/scorestats/internal/domain/model"
	"github.com/okian/scorestats/internal/testutil"
	"github.com/okian/scorestats/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil/promlint"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoreRepository(t *testing.T) {
	Convey("Given a score database with qualifying and excluded rows", t, func() {
		ctx := context.Background()
		db := testutil.OpenScoreDB(t, ":memory:")
		testutil.SeedStandard(t, db)
		repo := repository.New(db, repository.WithMetrics(metrics.NewManager()))

		Convey("When retrieving all scores", func() {
			scores, ok, err := repo.AllScores(ctx)

			Convey("Then only non-Best Of, non-repeat, non-null scores should come back ascending", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(scores, ShouldResemble, []model.Score{2, 4, 4, 6, 8})
			})
		})

		Convey("When retrieving grouped scores", func() {
			entries, ok, err := repo.GroupedScores(ctx)

			Convey("Then each score should appear once with its count, ascending", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(entries, ShouldResemble, []model.SpreadEntry{
					{Score: 2, Count: 1},
					{Score: 4, Count: 2},
					{Score: 6, Count: 1},
					{Score: 8, Count: 1},
				})
			})

			Convey("And the counts should sum to the number of raw scores", func() {
				scores, _, err := repo.AllScores(ctx)
				So(err, ShouldBeNil)
				So(model.SpreadCount(entries), ShouldEqual, len(scores))
			})
		})
	})

	Convey("Given a database where no score qualifies", t, func() {
		ctx := context.Background()
		db := testutil.OpenScoreDB(t, ":memory:")
		testutil.Seed(t, db,
			[]testutil.Show{{ID: 1, Date: "2018-01-06", BestOf: true}, {ID: 2, Date: "2018-01-13"}},
			[]testutil.PanelistScore{{ShowID: 1, PanelistID: 10, Score: testutil.IntPtr(5)}, {ShowID: 2, PanelistID: 10}},
		)
		repo := repository.New(db, repository.WithMetrics(metrics.NewManager()))

		Convey("Then both queries should report absent rather than fail", func() {
			scores, ok, err := repo.AllScores(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(scores, ShouldBeEmpty)

			entries, ok, err := repo.GroupedScores(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(entries, ShouldBeEmpty)
		})
	})

	Convey("Given custom table names", t, func() {
		ctx := context.Background()
		db := testutil.OpenScoreDB(t, ":memory:")
		testutil.SeedStandard(t, db)

		Convey("When the tables do not exist", func() {
			repo := repository.New(db,
				repository.WithShowsTable("shows"),
				repository.WithScoreMapTable("show_panelists"),
				repository.WithMetrics(metrics.NewManager()),
			)
			_, ok, err := repo.AllScores(ctx)

			Convey("Then the query error should be wrapped with ErrQuery", func() {
				So(ok, ShouldBeFalse)
				So(errors.Is(err, repository.ErrQuery), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, repository.QueryAllScores)
			})
		})

		Convey("When the table names are left empty", func() {
			repo := repository.New(db,
				repository.WithShowsTable(""),
				repository.WithScoreMapTable(""),
				repository.WithMetrics(metrics.NewManager()),
			)
			scores, ok, err := repo.AllScores(ctx)

			Convey("Then the default tables should be queried", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(scores, ShouldResemble, []model.Score{2, 4, 4, 6, 8})
			})
		})

		Convey("When a table name is not an identifier", func() {
			repo := repository.New(db,
				repository.WithShowsTable("ww_shows; DROP TABLE ww_shows"),
				repository.WithMetrics(metrics.NewManager()),
			)
			scores, ok, err := repo.AllScores(ctx)

			Convey("Then it should be ignored and the default used", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(scores, ShouldHaveLength, 5)
			})
		})
	})

	Convey("Given a closed connection", t, func() {
		db := testutil.OpenScoreDB(t, ":memory:")
		_ = db.Close()
		repo := repository.New(db, repository.WithMetrics(metrics.NewManager()))

		Convey("Then grouped scores should fail with ErrQuery", func() {
			_, _, err := repo.GroupedScores(context.Background())
			So(errors.Is(err, repository.ErrQuery), ShouldBeTrue)
		})
	})
}

func TestScoreRepositoryMetrics(t *testing.T) {
	Convey("Given a repository recording into its own metrics manager", t, func() {
		ctx := context.Background()
		db := testutil.OpenScoreDB(t, ":memory:")
		testutil.SeedStandard(t, db)
		m := metrics.NewManager()
		repo := repository.New(db, repository.WithMetrics(m))

		_, _, err := repo.AllScores(ctx)
		So(err, ShouldBeNil)
		_, _, err = repo.GroupedScores(ctx)
		So(err, ShouldBeNil)

		Convey("Then the registry should hold lint-clean query metrics", func() {
			families, err := m.Registry().Gather()
			So(err, ShouldBeNil)
			problems, err := promlint.NewWithMetricFamilies(families).Lint()
			So(err, ShouldBeNil)
			So(problems, ShouldBeEmpty)

			var found bool
			for _, f := range families {
				if f.GetName() == "scorestats_report_queries_total" {
					found = true
					So(f.GetMetric(), ShouldHaveLength, 2)
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}
