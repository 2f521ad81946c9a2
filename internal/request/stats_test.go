package request_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/leavesync/leavesync/internal/request"
)

type row struct {
	key    string
	amount float64
	at     time.Time
}

var _ = Describe("Aggregation", func() {
	Describe("GroupBy", func() {
		It("should count and sum per key, sorted by key", func() {
			rows := []row{
				{key: "approved", amount: 100},
				{key: "pending", amount: 50},
				{key: "approved", amount: 25},
			}

			groups := request.GroupBy(rows,
				func(r row) string { return r.key },
				func(r row) float64 { return r.amount },
			)

			Expect(groups).To(HaveLen(2))
			Expect(groups[0].Key).To(Equal("approved"))
			Expect(groups[0].Count).To(Equal(int64(2)))
			Expect(groups[0].Sum).To(Equal(125.0))
			Expect(groups[1].Key).To(Equal("pending"))
			Expect(groups[1].Count).To(Equal(int64(1)))
		})

		It("should return an empty slice for no rows", func() {
			groups := request.GroupBy(nil,
				func(r row) string { return r.key },
				nil,
			)
			Expect(groups).To(BeEmpty())
		})
	})

	Describe("GroupByMonth", func() {
		month := func(year int, m time.Month) time.Time {
			return time.Date(year, m, 15, 0, 0, 0, 0, time.UTC)
		}

		It("should bucket by year and month ascending", func() {
			rows := []row{
				{amount: 10, at: month(2025, time.March)},
				{amount: 20, at: month(2025, time.January)},
				{amount: 30, at: month(2025, time.March)},
				{amount: 40, at: month(2024, time.December)},
			}

			groups := request.GroupByMonth(rows,
				func(r row) time.Time { return r.at },
				func(r row) float64 { return r.amount },
				request.MonthlyBucketCap,
			)

			Expect(groups).To(HaveLen(3))
			Expect(groups[0].Year).To(Equal(2024))
			Expect(groups[0].Month).To(Equal(12))
			Expect(groups[1].Month).To(Equal(1))
			Expect(groups[2].Month).To(Equal(3))
			Expect(groups[2].Count).To(Equal(int64(2)))
			Expect(groups[2].Sum).To(Equal(40.0))
		})

		It("should keep only the most recent buckets when over the cap", func() {
			var rows []row
			for m := time.January; m <= time.December; m++ {
				rows = append(rows, row{at: month(2025, m)})
			}
			rows = append(rows, row{at: month(2024, time.June)})

			groups := request.GroupByMonth(rows,
				func(r row) time.Time { return r.at },
				nil,
				request.MonthlyBucketCap,
			)

			Expect(groups).To(HaveLen(12))
			// oldest bucket (June 2024) fell off the front
			Expect(groups[0].Year).To(Equal(2025))
			Expect(groups[0].Month).To(Equal(1))
			Expect(groups[11].Month).To(Equal(12))
		})
	})

	Describe("Pagination", func() {
		It("should normalize out-of-range params", func() {
			p := request.ListParams{Page: 0, Limit: 1000}.Normalize()
			Expect(p.Page).To(Equal(1))
			Expect(p.Limit).To(Equal(request.MaxPageLimit))
		})

		It("should default the limit", func() {
			p := request.ListParams{}.Normalize()
			Expect(p.Limit).To(Equal(request.DefaultPageLimit))
		})

		It("should round total pages up", func() {
			pg := request.NewPagination(41, request.ListParams{Page: 2, Limit: 20})
			Expect(pg.Total).To(Equal(int64(41)))
			Expect(pg.Pages).To(Equal(int64(3)))
			Expect(pg.Page).To(Equal(2))
		})
	})
})
