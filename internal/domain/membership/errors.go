package membership

import "errors"

var (
	ErrForbidden              = errors.New("actor lacks scope over the target site or worker")
	ErrMembershipNotFound     = errors.New("no membership found for user")
	ErrWorkerNotFound         = errors.New("worker not found")
	ErrSiteNotFound           = errors.New("site not found")
	ErrUnsupportedAssignment  = errors.New("assignment does not classify a worker")
	ErrWorkerIdentityRequired = errors.New("worker identity required")
)
