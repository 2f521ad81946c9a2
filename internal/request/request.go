package request

// Shared state machine for reviewable requests. Leave applications and
// reimbursement claims move through the same three states; everything
// here is agnostic of which entity it is applied to.

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// IsTerminal reports whether a request in this status can still be
// reviewed. Approved and rejected are terminal; there is no way back.
func IsTerminal(s string) bool {
	return s == StatusApproved || s == StatusRejected
}

// Visibility is the role-derived read scope. A nil EmployeeID means
// unrestricted; otherwise only that employee's records are visible.
type Visibility struct {
	EmployeeID *int64
}

func Unrestricted() Visibility {
	return Visibility{}
}

func OwnedBy(employeeID int64) Visibility {
	return Visibility{EmployeeID: &employeeID}
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type ListParams struct {
	Page  int
	Limit int
}

func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int64 `json:"pages"`
}

func NewPagination(total int64, params ListParams) Pagination {
	pages := (total + int64(params.Limit) - 1) / int64(params.Limit)
	return Pagination{
		Total: total,
		Page:  params.Page,
		Pages: pages,
	}
}
