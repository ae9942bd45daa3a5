package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	RoomStatusAvailable   = "available"
	RoomStatusOccupied    = "occupied"
	RoomStatusMaintenance = "maintenance"
	RoomStatusInactive    = "inactive"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

const (
	// DefaultSessionTTL lifetime of a dashboard session in Redis
	DefaultSessionTTL = 24 * 60 * 60 // 24 hours in seconds

	// DefaultMaxAdvanceDays how far ahead a reservation may start
	DefaultMaxAdvanceDays = 365

	// DefaultMaxStayNights upper bound on a single stay
	DefaultMaxStayNights = 90

	// WorkerQueueSize size of the report worker queue
	WorkerQueueSize = 256

	// RateLimitRequests requests per window for unauthenticated clients
	RateLimitRequests = 30

	// RateLimitWindow rate limit window in seconds
	RateLimitWindow = 60
)
