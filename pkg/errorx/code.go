package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	AlreadyExists    Code = 100005
	Internal         Code = 100006
	Unavailable      Code = 100007
	TooManyRequests  Code = 100008

	// Admission codes
	EventNotAcceptingEntries Code = 200001
	AlreadyEntered           Code = 200002
	Ineligible               Code = 200003
	RetryExceeded            Code = 200004

	// Selection codes
	ManualSelectionRequired Code = 300001
	CapacityExhausted       Code = 300002

	// Lifecycle codes
	EventClosedImmutable Code = 400001
)
