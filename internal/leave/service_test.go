package leave_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/leavesync/leavesync/internal"
	"github.com/leavesync/leavesync/internal/auth"
	leaveDatamodel "github.com/leavesync/leavesync/internal/core/datamodel/leave"
	"github.com/leavesync/leavesync/internal/leave"
	"github.com/leavesync/leavesync/internal/request"
)

func TestLeaveService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Service Suite")
}

// MockRepository implements leave.Repository for testing
type MockRepository struct {
	records map[int64]*leaveDatamodel.Leave
	nextID  int64

	lastFilter leave.ListFilter
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		records: make(map[int64]*leaveDatamodel.Leave),
		nextID:  1,
	}
}

func (m *MockRepository) Create(rec *leaveDatamodel.Leave) error {
	rec.ID = m.nextID
	m.nextID++
	rec.CreatedAt = time.Now()
	m.records[rec.ID] = rec
	return nil
}

func (m *MockRepository) GetByID(id int64) (*leaveDatamodel.Leave, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func (m *MockRepository) List(filter leave.ListFilter) ([]*leaveDatamodel.Leave, int64, error) {
	m.lastFilter = filter
	var result []*leaveDatamodel.Leave
	for _, rec := range m.records {
		if filter.Visibility.EmployeeID != nil && rec.EmployeeID != *filter.Visibility.EmployeeID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.LeaveType != "" && rec.LeaveType != filter.LeaveType {
			continue
		}
		result = append(result, rec)
	}
	return result, int64(len(result)), nil
}

func (m *MockRepository) CountOverlapping(employeeID int64, start, end time.Time) (int64, error) {
	var count int64
	for _, rec := range m.records {
		if rec.EmployeeID != employeeID || rec.Status == request.StatusRejected {
			continue
		}
		if !rec.StartDate.After(end) && !rec.EndDate.Before(start) {
			count++
		}
	}
	return count, nil
}

func (m *MockRepository) MarkReviewed(id int64, status string, reviewerID int64, comment string, reviewedAt time.Time) (bool, error) {
	rec, ok := m.records[id]
	if !ok || rec.Status != request.StatusPending {
		return false, nil
	}
	rec.Status = status
	rec.ApprovedBy = &reviewerID
	rec.ApproverComment = comment
	rec.ReviewedAt = &reviewedAt
	return true, nil
}

func (m *MockRepository) ReviewSnapshot(id int64) (*request.ReviewSnapshot, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &request.ReviewSnapshot{EmployeeID: rec.EmployeeID, Status: rec.Status}, nil
}

func (m *MockRepository) Delete(id int64) error {
	delete(m.records, id)
	return nil
}

func (m *MockRepository) StatRows(vis request.Visibility) ([]leave.StatRow, error) {
	var rows []leave.StatRow
	for _, rec := range m.records {
		if vis.EmployeeID != nil && rec.EmployeeID != *vis.EmployeeID {
			continue
		}
		rows = append(rows, leave.StatRow{
			Status:    rec.Status,
			LeaveType: rec.LeaveType,
			TotalDays: rec.TotalDays,
			CreatedAt: rec.CreatedAt,
		})
	}
	return rows, nil
}

var _ = Describe("WorkingDays", func() {
	day := func(s string) time.Time {
		t, err := time.Parse("2006-01-02", s)
		Expect(err).NotTo(HaveOccurred())
		return t
	}

	It("should count five days for a Monday to Friday range", func() {
		// 2025-06-02 is a Monday
		Expect(leave.WorkingDays(day("2025-06-02"), day("2025-06-06"))).To(Equal(5))
	})

	It("should count five days for a full Monday to Sunday week", func() {
		Expect(leave.WorkingDays(day("2025-06-02"), day("2025-06-08"))).To(Equal(5))
	})

	It("should charge one day for a weekend-only range", func() {
		// Saturday and Sunday
		Expect(leave.WorkingDays(day("2025-06-07"), day("2025-06-08"))).To(Equal(1))
	})

	It("should count a single weekday as one", func() {
		Expect(leave.WorkingDays(day("2025-06-04"), day("2025-06-04"))).To(Equal(1))
	})

	It("should skip weekends inside longer ranges", func() {
		// two full weeks
		Expect(leave.WorkingDays(day("2025-06-02"), day("2025-06-15"))).To(Equal(10))
	})
})

var _ = Describe("Leave Service", func() {
	var (
		repo     *MockRepository
		service  *leave.Service
		logger   *slog.Logger
		employee *auth.User
		manager  *auth.User
		ctx      context.Context
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = leave.NewService(repo, nil, logger)
		employee = &auth.User{ID: 1, Role: auth.RoleEmployee}
		manager = &auth.User{ID: 2, Role: auth.RoleManager}
		ctx = context.Background()
	})

	validDTO := func() leave.CreateLeaveDTO {
		return leave.CreateLeaveDTO{
			LeaveType: leave.LeaveTypeAnnual,
			StartDate: "2025-06-02",
			EndDate:   "2025-06-06",
			Reason:    "Family trip out of town",
		}
	}

	Describe("Create", func() {
		It("should submit a pending request with computed working days", func() {
			lv, err := service.Create(employee, validDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(lv.Status).To(Equal(request.StatusPending))
			Expect(lv.TotalDays).To(Equal(5))
			Expect(lv.EmployeeID).To(Equal(employee.ID))
		})

		It("should refuse an overlapping request", func() {
			_, err := service.Create(employee, validDTO())
			Expect(err).NotTo(HaveOccurred())

			dto := validDTO()
			dto.StartDate = "2025-06-05"
			dto.EndDate = "2025-06-10"
			_, err = service.Create(employee, dto)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(appErr.Message).To(Equal("You have an overlapping leave request in this date range"))
		})

		It("should ignore rejected leaves in the overlap check", func() {
			lv, err := service.Create(employee, validDTO())
			Expect(err).NotTo(HaveOccurred())
			repo.records[lv.ID].Status = request.StatusRejected

			_, err = service.Create(employee, validDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should allow another employee to book the same range", func() {
			_, err := service.Create(employee, validDTO())
			Expect(err).NotTo(HaveOccurred())

			other := &auth.User{ID: 5, Role: auth.RoleEmployee}
			_, err = service.Create(other, validDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should refuse an end date before the start date", func() {
			dto := validDTO()
			dto.EndDate = "2025-06-01"
			_, err := service.Create(employee, dto)
			Expect(err).To(HaveOccurred())
		})

		It("should refuse a reason under ten characters", func() {
			dto := validDTO()
			dto.Reason = "short"
			_, err := service.Create(employee, dto)
			Expect(err).To(HaveOccurred())
		})

		It("should refuse an unknown leave type", func() {
			dto := validDTO()
			dto.LeaveType = "sabbatical"
			_, err := service.Create(employee, dto)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			_, err := service.Create(employee, validDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should scope employees to their own requests", func() {
			_, _, err := service.List(employee, "", "", nil, request.ListParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.Visibility.EmployeeID).NotTo(BeNil())
			Expect(*repo.lastFilter.Visibility.EmployeeID).To(Equal(employee.ID))
		})

		It("should leave managers unscoped", func() {
			_, _, err := service.List(manager, "", "", nil, request.ListParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.Visibility.EmployeeID).To(BeNil())
		})

		It("should report pagination", func() {
			leaves, pagination, err := service.List(manager, "", "", nil, request.ListParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(leaves).To(HaveLen(1))
			Expect(pagination.Total).To(Equal(int64(1)))
			Expect(pagination.Page).To(Equal(1))
		})
	})

	Describe("GetByID", func() {
		var id int64

		BeforeEach(func() {
			lv, err := service.Create(employee, validDTO())
			Expect(err).NotTo(HaveOccurred())
			id = lv.ID
		})

		It("should return the owner's own request", func() {
			lv, err := service.GetByID(employee, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(lv.ID).To(Equal(id))
		})

		It("should hide other employees' requests", func() {
			other := &auth.User{ID: 9, Role: auth.RoleEmployee}
			_, err := service.GetByID(other, id)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("should let reviewers read any request", func() {
			_, err := service.GetByID(manager, id)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Approve and Reject", func() {
		var id int64

		BeforeEach(func() {
			lv, err := service.Create(employee, validDTO())
			Expect(err).NotTo(HaveOccurred())
			id = lv.ID
		})

		It("should record the reviewer and decision", func() {
			lv, err := service.Approve(ctx, id, manager.ID, "enjoy")
			Expect(err).NotTo(HaveOccurred())
			Expect(lv.Status).To(Equal(request.StatusApproved))
			Expect(*lv.ApprovedBy).To(Equal(manager.ID))
			Expect(lv.ApproverComment).To(Equal("enjoy"))
			Expect(lv.ReviewedAt).NotTo(BeNil())
		})

		It("should refuse reviewing the same request twice", func() {
			_, err := service.Approve(ctx, id, manager.ID, "")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Reject(ctx, id, manager.ID, "")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(appErr.Message).To(Equal("Leave already approved"))
		})

		It("should return not found for a missing request", func() {
			_, err := service.Approve(ctx, 999, manager.ID, "")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(404))
		})
	})

	Describe("Delete", func() {
		var id int64

		BeforeEach(func() {
			lv, err := service.Create(employee, validDTO())
			Expect(err).NotTo(HaveOccurred())
			id = lv.ID
		})

		It("should let the owner withdraw a pending request", func() {
			Expect(service.Delete(employee, id)).To(Succeed())
			rec, _ := repo.GetByID(id)
			Expect(rec).To(BeNil())
		})

		It("should refuse non-owners, including managers", func() {
			err := service.Delete(manager, id)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("should refuse withdrawing a settled request", func() {
			_, err := service.Approve(ctx, id, manager.ID, "")
			Expect(err).NotTo(HaveOccurred())

			err = service.Delete(employee, id)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("Only pending leaves can be deleted"))
		})
	})

	Describe("Stats", func() {
		BeforeEach(func() {
			lv, err := service.Create(employee, validDTO())
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Approve(ctx, lv.ID, manager.ID, "")
			Expect(err).NotTo(HaveOccurred())

			dto := validDTO()
			dto.LeaveType = leave.LeaveTypeSick
			dto.StartDate = "2025-07-07"
			dto.EndDate = "2025-07-08"
			_, err = service.Create(employee, dto)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should group by status, type and month", func() {
			stats, err := service.Stats(manager)
			Expect(err).NotTo(HaveOccurred())

			Expect(stats.ByStatus).To(HaveLen(2))
			Expect(stats.ByType).To(HaveLen(2))
			Expect(stats.Monthly).To(HaveLen(1))
		})

		It("should scope employee stats to their own requests", func() {
			other := &auth.User{ID: 7, Role: auth.RoleEmployee}
			dto := validDTO()
			dto.StartDate = "2025-08-04"
			dto.EndDate = "2025-08-08"
			_, err := service.Create(other, dto)
			Expect(err).NotTo(HaveOccurred())

			stats, err := service.Stats(other)
			Expect(err).NotTo(HaveOccurred())

			var total int64
			for _, g := range stats.ByStatus {
				total += g.Count
			}
			Expect(total).To(Equal(int64(1)))

			managerStats, err := service.Stats(manager)
			Expect(err).NotTo(HaveOccurred())
			total = 0
			for _, g := range managerStats.ByStatus {
				total += g.Count
			}
			Expect(total).To(Equal(int64(3)))
		})

		It("should sum working days per type", func() {
			stats, err := service.Stats(manager)
			Expect(err).NotTo(HaveOccurred())

			for _, g := range stats.ByType {
				switch g.LeaveType {
				case leave.LeaveTypeAnnual:
					Expect(g.TotalDays).To(Equal(5))
				case leave.LeaveTypeSick:
					Expect(g.TotalDays).To(Equal(2))
				}
			}
		})

		It("should serialize group keys as _id", func() {
			stats, err := service.Stats(manager)
			Expect(err).NotTo(HaveOccurred())

			raw, err := json.Marshal(stats.ByStatus[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring(`"_id"`))
		})
	})
})
