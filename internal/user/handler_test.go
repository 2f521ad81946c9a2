package user_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/leavesync/leavesync/internal/user"
)

var _ = Describe("User Handler", func() {
	var (
		repo    *MockRepository
		handler *user.Handler
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = user.NewHandler(user.NewService(repo, logger))

		repo.add(1, "admin", true)
		repo.add(2, "manager", true)
		repo.add(3, "employee", true)
	})

	Describe("List", func() {
		It("should respond with count alongside users and pagination", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			rec := httptest.NewRecorder()

			handler.List(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var body struct {
				Count int64             `json:"count"`
				Users []json.RawMessage `json:"users"`
				Pagination struct {
					Total int64 `json:"total"`
					Page  int   `json:"page"`
					Pages int64 `json:"pages"`
				} `json:"pagination"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Count).To(Equal(int64(3)))
			Expect(body.Users).To(HaveLen(3))
			Expect(body.Pagination.Total).To(Equal(body.Count))
		})
	})
})
