package auth_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/leavesync/leavesync/internal"
	"github.com/leavesync/leavesync/internal/auth"
	"github.com/leavesync/leavesync/internal/request"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ = Describe("Policy", func() {
	policy := auth.NewPolicy()

	employee := &auth.User{ID: 1, Role: auth.RoleEmployee}
	manager := &auth.User{ID: 2, Role: auth.RoleManager}
	admin := &auth.User{ID: 3, Role: auth.RoleAdmin}

	Describe("VisibilityFor", func() {
		It("should scope employees to their own records", func() {
			vis := policy.VisibilityFor(employee, nil)
			Expect(vis.EmployeeID).NotTo(BeNil())
			Expect(*vis.EmployeeID).To(Equal(int64(1)))
		})

		It("should ignore the employee filter for employees", func() {
			other := int64(99)
			vis := policy.VisibilityFor(employee, &other)
			Expect(*vis.EmployeeID).To(Equal(int64(1)))
		})

		It("should give managers an unrestricted scope", func() {
			vis := policy.VisibilityFor(manager, nil)
			Expect(vis.EmployeeID).To(BeNil())
		})

		It("should let reviewers narrow to one employee", func() {
			target := int64(7)
			vis := policy.VisibilityFor(admin, &target)
			Expect(*vis.EmployeeID).To(Equal(int64(7)))
		})
	})

	Describe("CanCreateRequests", func() {
		It("should allow only employees", func() {
			Expect(policy.CanCreateRequests(employee)).To(BeTrue())
			Expect(policy.CanCreateRequests(manager)).To(BeFalse())
			Expect(policy.CanCreateRequests(admin)).To(BeFalse())
		})
	})

	Describe("CanDeleteLeave", func() {
		It("should allow the owner of a pending leave", func() {
			Expect(policy.CanDeleteLeave(employee, 1, request.StatusPending)).To(Succeed())
		})

		It("should refuse non-owners regardless of role", func() {
			err := policy.CanDeleteLeave(manager, 1, request.StatusPending)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("should refuse deleting a settled leave", func() {
			err := policy.CanDeleteLeave(employee, 1, request.StatusApproved)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(appErr.Message).To(Equal("Only pending leaves can be deleted"))
		})
	})

	Describe("CanToggleStatus", func() {
		It("should refuse self-deactivation", func() {
			err := policy.CanToggleStatus(admin, admin.ID)
			Expect(err).To(HaveOccurred())
		})

		It("should allow toggling another account", func() {
			Expect(policy.CanToggleStatus(admin, employee.ID)).To(Succeed())
		})
	})

	Describe("RoleError", func() {
		It("should name the accepted roles and the actor's role", func() {
			appErr := auth.RoleError(employee, auth.RoleManager, auth.RoleAdmin)
			Expect(appErr.Message).To(Equal("Access denied. Required role(s): manager, admin. Your role: employee"))
			Expect(appErr.StatusCode).To(Equal(403))
		})
	})
})

var _ = Describe("RBAC Middleware", func() {
	var (
		rbac *auth.RBACMiddleware
		next http.Handler
	)

	BeforeEach(func() {
		rbac = auth.NewRBACMiddleware(testLogger())
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	serve := func(mw func(http.Handler) http.Handler, actor *auth.User) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if actor != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), actor))
		}
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)
		return rec
	}

	It("should pass a matching role through", func() {
		rec := serve(rbac.RequireReviewer(), &auth.User{ID: 2, Role: auth.RoleManager})
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should return 403 with the role message for a mismatch", func() {
		rec := serve(rbac.RequireAdmin(), &auth.User{ID: 1, Role: auth.RoleEmployee})
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(rec.Body.String()).To(ContainSubstring("Access denied. Required role(s): admin. Your role: employee"))
	})

	It("should return 401 when no actor is present", func() {
		rec := serve(rbac.RequireEmployee(), nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
