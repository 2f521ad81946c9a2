package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	leaveDatamodel "github.com/leavesync/leavesync/internal/core/datamodel/leave"
	"github.com/leavesync/leavesync/internal/leave"
	"github.com/leavesync/leavesync/internal/request"
)

func TestLeaveRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LeaveRepository Suite")
}

func openTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	Expect(err).NotTo(HaveOccurred())
	Expect(db.AutoMigrate(&leaveDatamodel.Leave{})).To(Succeed())
	return db
}

var _ = Describe("LeaveRepository", func() {
	var (
		db   *gorm.DB
		repo leave.Repository
	)

	day := func(s string) time.Time {
		t, err := time.Parse("2006-01-02", s)
		Expect(err).NotTo(HaveOccurred())
		return t
	}

	newLeave := func(employeeID int64, start, end, status string) *leaveDatamodel.Leave {
		return &leaveDatamodel.Leave{
			EmployeeID: employeeID,
			LeaveType:  leave.LeaveTypeAnnual,
			StartDate:  day(start),
			EndDate:    day(end),
			TotalDays:  leave.WorkingDays(day(start), day(end)),
			Reason:     "Planned family vacation",
			Status:     status,
		}
	}

	BeforeEach(func() {
		db = openTestDB()
		repo = NewLeaveRepository(db)
	})

	Describe("Create and GetByID", func() {
		It("should round-trip a leave", func() {
			rec := newLeave(1, "2025-06-02", "2025-06-06", request.StatusPending)
			Expect(repo.Create(rec)).To(Succeed())
			Expect(rec.ID).NotTo(BeZero())

			loaded, err := repo.GetByID(rec.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.EmployeeID).To(Equal(int64(1)))
			Expect(loaded.TotalDays).To(Equal(5))
		})

		It("should return nil for a missing id", func() {
			loaded, err := repo.GetByID(12345)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeNil())
		})
	})

	Describe("CountOverlapping", func() {
		BeforeEach(func() {
			Expect(repo.Create(newLeave(1, "2025-06-02", "2025-06-06", request.StatusPending))).To(Succeed())
		})

		It("should count an intersecting range", func() {
			count, err := repo.CountOverlapping(1, day("2025-06-05"), day("2025-06-10"))
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("should count a range that contains the existing one", func() {
			count, err := repo.CountOverlapping(1, day("2025-06-01"), day("2025-06-30"))
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("should ignore disjoint ranges", func() {
			count, err := repo.CountOverlapping(1, day("2025-06-09"), day("2025-06-13"))
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("should ignore other employees", func() {
			count, err := repo.CountOverlapping(2, day("2025-06-02"), day("2025-06-06"))
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("should ignore rejected leaves", func() {
			Expect(db.Model(&leaveDatamodel.Leave{}).Where("employee_id = ?", 1).
				Update("status", request.StatusRejected).Error).To(Succeed())

			count, err := repo.CountOverlapping(1, day("2025-06-02"), day("2025-06-06"))
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})

	Describe("MarkReviewed", func() {
		var id int64

		BeforeEach(func() {
			rec := newLeave(1, "2025-06-02", "2025-06-06", request.StatusPending)
			Expect(repo.Create(rec)).To(Succeed())
			id = rec.ID
		})

		It("should settle a pending leave exactly once", func() {
			ok, err := repo.MarkReviewed(id, request.StatusApproved, 9, "fine", time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			// second attempt loses: the row is no longer pending
			ok, err = repo.MarkReviewed(id, request.StatusRejected, 8, "", time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			loaded, err := repo.GetByID(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Status).To(Equal(request.StatusApproved))
			Expect(*loaded.ApprovedBy).To(Equal(int64(9)))
			Expect(loaded.ApproverComment).To(Equal("fine"))
			Expect(loaded.ReviewedAt).NotTo(BeNil())
		})

		It("should report no change for a missing id", func() {
			ok, err := repo.MarkReviewed(999, request.StatusApproved, 9, "", time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			Expect(repo.Create(newLeave(1, "2025-06-02", "2025-06-06", request.StatusPending))).To(Succeed())
			Expect(repo.Create(newLeave(1, "2025-07-07", "2025-07-08", request.StatusApproved))).To(Succeed())
			Expect(repo.Create(newLeave(2, "2025-06-02", "2025-06-06", request.StatusPending))).To(Succeed())
		})

		It("should scope by visibility", func() {
			records, total, err := repo.List(leave.ListFilter{
				Visibility: request.OwnedBy(1),
				Params:     request.ListParams{}.Normalize(),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			for _, rec := range records {
				Expect(rec.EmployeeID).To(Equal(int64(1)))
			}
		})

		It("should filter by status", func() {
			_, total, err := repo.List(leave.ListFilter{
				Visibility: request.Unrestricted(),
				Status:     request.StatusApproved,
				Params:     request.ListParams{}.Normalize(),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
		})

		It("should paginate with a total across all pages", func() {
			records, total, err := repo.List(leave.ListFilter{
				Visibility: request.Unrestricted(),
				Params:     request.ListParams{Page: 2, Limit: 2}.Normalize(),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(records).To(HaveLen(1))
		})
	})

	Describe("StatRows", func() {
		BeforeEach(func() {
			Expect(repo.Create(newLeave(1, "2025-06-02", "2025-06-06", request.StatusPending))).To(Succeed())
			Expect(repo.Create(newLeave(2, "2025-07-07", "2025-07-08", request.StatusApproved))).To(Succeed())
		})

		It("should project the aggregation columns", func() {
			rows, err := repo.StatRows(request.Unrestricted())
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].LeaveType).To(Equal(leave.LeaveTypeAnnual))
			Expect(rows[0].CreatedAt).NotTo(BeZero())
		})

		It("should respect visibility", func() {
			rows, err := repo.StatRows(request.OwnedBy(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
		})
	})

	Describe("Delete", func() {
		It("should remove the row", func() {
			rec := newLeave(1, "2025-06-02", "2025-06-06", request.StatusPending)
			Expect(repo.Create(rec)).To(Succeed())
			Expect(repo.Delete(rec.ID)).To(Succeed())

			loaded, err := repo.GetByID(rec.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeNil())
		})
	})
})
