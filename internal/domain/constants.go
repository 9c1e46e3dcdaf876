package domain

// Default configuration values
const (
	DefaultSlotIntervalMinutes = 15
	DefaultMinNoticeMinutes    = 60           // 1 hour
	DefaultMaxAdvanceMinutes   = 60 * 24 * 60 // 60 days
)

// Business validation constants
const (
	MinDurationMinutes = 5
	MaxDurationMinutes = 480 // 8 hours

	MinSlotIntervalMinutes = 5
	MaxSlotIntervalMinutes = 240

	MaxBufferMinutes = 120

	MaxNoticeMinutes  = 10080         // 1 week
	MaxAdvanceMinutes = 365 * 24 * 60 // 1 year

	MaxTitleLength              = 200
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxTeamMembers              = 50
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов, не занимающих время хоста
// Используется при фильтрации бронирований для поиска конфликтов
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
}

// ActiveStatuses список статусов, занимающих время хоста
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
	StatusNoShow,
}
