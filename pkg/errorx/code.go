package errorx

type Code int

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008

	// Eligibility codes
	SubscriptionRequired Code = 200001
	SubscriptionExpired  Code = 200002

	// Raffle codes
	RaffleClosed      Code = 300001
	NoEligibleWinners Code = 300002
)
